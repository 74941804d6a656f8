package conversations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds the GORM-backed conversation repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error) {
	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repository) FindByMerchantAndCustomer(ctx context.Context, merchantID uuid.UUID, customerID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND customer_id = ?", merchantID, customerID).
		Order("created_at DESC").
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}
