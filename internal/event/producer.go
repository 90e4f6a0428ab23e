package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topic constants for product domain events.
const (
	TopicProductCreated = "storefront.product.created"
	TopicProductUpdated = "storefront.product.updated"
	TopicProductDeleted = "storefront.product.deleted"
)

// AggregateTypeProduct is the aggregate type of every product event.
const AggregateTypeProduct = "product"

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// ProductData is the payload of product.created and product.updated events.
type ProductData struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Slug            string             `json:"slug"`
	Description     string             `json:"description"`
	BasePrice       decimal.Decimal    `json:"basePrice"`
	DiscountedPrice *decimal.Decimal   `json:"discountedPrice,omitempty"`
	CategoryIDs     []string           `json:"categoryIds"`
	Status          domain.StockStatus `json:"status"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID   string `json:"id"`
	Slug string `json:"slug,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes product domain events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer. kafka is usually a
// *pkgkafka.Producer.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(p *domain.Product) ProductData {
	ids := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	status := domain.StatusSoldOut
	if p.InStock() {
		status = domain.StatusAvailable
	}
	return ProductData{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		BasePrice:       p.BasePrice,
		DiscountedPrice: p.DiscountedPrice,
		CategoryIDs:     ids,
		Status:          status,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductDeleted, product.ID, ProductDeletedData{ID: product.ID, Slug: product.Slug})
}

func (p *Producer) publish(ctx context.Context, topic, productID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, productID, AggregateTypeProduct, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published product event",
		slog.String("topic", topic),
		slog.String("product_id", productID),
		slog.String("event_id", event.ID),
	)
	return nil
}

// NoopProducer discards events. It is used when no Kafka brokers are
// configured.
type NoopProducer struct{}

func (NoopProducer) PublishProductCreated(context.Context, *domain.Product) error { return nil }
func (NoopProducer) PublishProductUpdated(context.Context, *domain.Product) error { return nil }
func (NoopProducer) PublishProductDeleted(context.Context, *domain.Product) error { return nil }
