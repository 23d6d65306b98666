package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-marketplace/internal/config"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/segmentio/kafka-go"
)

type PaymentEvent struct {
	Type      string    `json:"type"`
	CartID    string    `json:"cart_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Producer streams payment lifecycle events. In mock mode events only hit
// the log, which keeps local development free of a running broker.
type Producer struct {
	writer *kafka.Writer
	topics config.TopicConfig
	logger *logger.Logger
	mock   bool
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	p := &Producer{topics: cfg.Topics, logger: log, mock: cfg.MockMode}
	if !cfg.MockMode {
		p.writer = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Balancer: &kafka.LeastBytes{},
		}
	}
	return p
}

// PublishTransactionRecorded streams every payment attempt, successful or
// not, keyed by cart id.
func (p *Producer) PublishTransactionRecorded(tx models.Transaction) error {
	event := PaymentEvent{
		Type:      "transaction.recorded",
		CartID:    tx.CartID,
		UserID:    tx.UserID,
		Timestamp: time.Now(),
		Payload:   tx,
	}
	return p.publish(p.topics.TransactionRecorded, tx.CartID, event)
}

// PublishCartPaid streams the PENDING->PAID transition.
func (p *Producer) PublishCartPaid(cart models.Cart) error {
	event := PaymentEvent{
		Type:      "cart.paid",
		CartID:    cart.ID,
		UserID:    cart.UserID,
		Timestamp: time.Now(),
		Payload:   cart,
	}
	return p.publish(p.topics.CartPaid, cart.ID, event)
}

func (p *Producer) publish(topic, key string, event PaymentEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.mock {
		p.logger.LogKafka("MOCK", topic, string(msgBytes))
		return nil
	}

	p.logger.LogKafka("PUBLISH", topic, fmt.Sprintf("%s key=%s", event.Type, key))

	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
