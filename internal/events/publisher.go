package events

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// Publisher wraps the go-shared events publisher for catalog events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new catalog events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "catalog-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishProductCreated publishes a product.created event
func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product, tenantID string) error {
	event := p.buildProductEvent("product.created", product, tenantID)
	event.ChangeType = "created"
	return p.publish(ctx, event)
}

// PublishProductUpdated publishes a product.updated event with the set of
// changed fields for the audit trail
func (p *Publisher) PublishProductUpdated(ctx context.Context, product *models.Product, changedFields []string, tenantID string) error {
	event := p.buildProductEvent("product.updated", product, tenantID)
	event.ChangeType = "updated"
	event.ChangedFields = changedFields
	return p.publish(ctx, event)
}

// PublishProductDeleted publishes a product.deleted event
func (p *Publisher) PublishProductDeleted(ctx context.Context, product *models.Product, tenantID string) error {
	event := p.buildProductEvent("product.deleted", product, tenantID)
	event.ChangeType = "deleted"
	return p.publish(ctx, event)
}

// PublishPriceChanged publishes a product.price_changed event
func (p *Publisher) PublishPriceChanged(ctx context.Context, product *models.Product, oldPrice, newPrice decimal.Decimal, tenantID string) error {
	event := p.buildProductEvent("product.price_changed", product, tenantID)
	event.ChangeType = "price_changed"
	event.OldValue = map[string]interface{}{"price": oldPrice.String()}
	event.NewValue = map[string]interface{}{"price": newPrice.String()}
	event.ChangedFields = []string{"price"}
	return p.publish(ctx, event)
}

// PublishVariantsReconciled publishes a product.variants_reconciled event
// summarizing one reconciliation pass
func (p *Publisher) PublishVariantsReconciled(ctx context.Context, product *models.Product, liveCount int, retired []uuid.UUID, tenantID string) error {
	event := p.buildProductEvent("product.variants_reconciled", product, tenantID)
	event.ChangeType = "variants_reconciled"
	retiredIDs := make([]string, len(retired))
	for i, id := range retired {
		retiredIDs[i] = id.String()
	}
	event.NewValue = map[string]interface{}{
		"liveVariants":    liveCount,
		"retiredVariants": retiredIDs,
	}
	return p.publish(ctx, event)
}

func (p *Publisher) buildProductEvent(eventType string, product *models.Product, tenantID string) *events.ProductEvent {
	event := events.NewProductEvent(eventType, tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = product.ID.String()
	event.ProductName = product.Name
	event.SKU = product.SKU
	if product.Price != nil {
		price, _ := product.Price.Float64()
		event.Price = price
	}
	return event
}

// publish logs and publishes events asynchronously so request handling
// never blocks on NATS
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish catalog event")
		}
	}()

	return nil
}
