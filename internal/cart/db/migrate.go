package db

import (
	"context"
	"log"
	"time"

	"ms-marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Migrate creates the marketplace tables if they do not exist yet.
func Migrate(db *bun.DB) {
	ctx := context.Background()

	tables := []interface{}{
		(*models.Item)(nil),
		(*models.ItemDetail)(nil),
		(*models.Cart)(nil),
		(*models.CartLine)(nil),
		(*models.Transaction)(nil),
	}

	for _, model := range tables {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("create table failed: %v", err)
		}
	}

	log.Println("marketplace tables created")
}

// SeedItems inserts a couple of demo items when the items table is empty.
func SeedItems(db *bun.DB) {
	ctx := context.Background()

	count, err := db.NewSelect().Model((*models.Item)(nil)).Count(ctx)
	if err != nil {
		log.Fatalf("count items failed: %v", err)
	}
	if count > 0 {
		return
	}

	samples := []struct {
		name     string
		category string
		price    string
	}{
		{"Wireless Keyboard", "electronics", "45.00"},
		{"Desk Lamp", "home", "12.50"},
		{"Coffee Beans 1kg", "grocery", "18.90"},
	}

	for _, s := range samples {
		item := &models.Item{
			ID:        uuid.NewString(),
			Name:      s.name,
			Category:  s.category,
			CreatedAt: time.Now(),
		}
		if _, err := db.NewInsert().Model(item).Exec(ctx); err != nil {
			log.Fatalf("seed item failed: %v", err)
		}

		price, _ := decimal.NewFromString(s.price)
		detail := &models.ItemDetail{
			ItemID:            item.ID,
			Price:             price,
			QuantityAvailable: 100,
		}
		if _, err := db.NewInsert().Model(detail).Exec(ctx); err != nil {
			log.Fatalf("seed item detail failed: %v", err)
		}
	}

	log.Println("sample items seeded")
}
