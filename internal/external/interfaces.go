package external

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox"
)

// Service reconciles orders sourced from third-party channels.
type Service interface {
	Ingest(ctx context.Context, input IngestInput) (*models.Sale, error)
	Replace(ctx context.Context, input ReplaceInput) (*models.Sale, error)
	Merge(ctx context.Context, input MergeInput) (*models.Sale, error)
	Confirm(ctx context.Context, merchantID, orderID uuid.UUID) (*models.Sale, error)
	RecordWebPush(ctx context.Context, input RecordWebPushInput) (*models.Sale, error)
}

// ConversationFinder is the slice of the conversation directory the
// synchronizer needs. External orders are refused for customers with no
// chat thread.
type ConversationFinder interface {
	FindConversation(ctx context.Context, merchantID uuid.UUID, customerID string) (*models.Conversation, error)
}

// PlaceholderProvider supplies the per-merchant placeholder product
// backing external lines. Satisfied by catalog.Service.
type PlaceholderProvider interface {
	EnsurePlaceholder(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}
