package conversations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

// Repository persists conversation threads for the directory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	FindByMerchantAndCustomer(ctx context.Context, merchantID uuid.UUID, customerID string) (*models.Conversation, error)
}

// Directory resolves the chat thread an order belongs to. External order
// ingestion refuses customers it has never talked to.
type Directory interface {
	FindConversation(ctx context.Context, merchantID uuid.UUID, customerID string) (*models.Conversation, error)
	GetConversation(ctx context.Context, merchantID, conversationID uuid.UUID) (*models.Conversation, error)
	StartConversation(ctx context.Context, input StartConversationInput) (*models.Conversation, error)
}

// StartConversationInput registers a new chat thread for a customer.
type StartConversationInput struct {
	MerchantID uuid.UUID
	Platform   enums.Platform
	CustomerID string
}
