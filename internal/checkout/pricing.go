package checkout

import (
	"fmt"

	"ms-marketplace/internal/models"

	"github.com/shopspring/decimal"
)

// ItemPricer resolves an item's current unit price. The bool is false when
// the item no longer exists.
type ItemPricer interface {
	UnitPrice(itemID string) (decimal.Decimal, bool, error)
}

// CartTotal sums the cart's line totals at current prices. A line whose item
// has been deleted contributes exactly zero instead of failing the whole
// computation. Line totals are kept at full precision; only the final sum is
// scaled to 2 decimal places, rounding half up. An empty cart totals zero.
func CartTotal(pricer ItemPricer, cart *models.Cart) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range cart.Lines {
		price, found, err := pricer.UnitPrice(line.ItemID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to price item %s: %w", line.ItemID, err)
		}
		if !found {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	total = total.Round(2)
	if total.IsNegative() {
		return decimal.Zero, nil
	}
	return total, nil
}
