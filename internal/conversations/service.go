package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
)

type service struct {
	repo Repository
}

// NewService builds the conversation directory.
func NewService(repo Repository) (Directory, error) {
	if repo == nil {
		return nil, fmt.Errorf("conversation repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) FindConversation(ctx context.Context, merchantID uuid.UUID, customerID string) (*models.Conversation, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	conversation, err := s.repo.FindByMerchantAndCustomer(ctx, merchantID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}
	return conversation, nil
}

func (s *service) GetConversation(ctx context.Context, merchantID, conversationID uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.repo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}
	if conversation.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
	}
	return conversation, nil
}

func (s *service) StartConversation(ctx context.Context, input StartConversationInput) (*models.Conversation, error) {
	input.CustomerID = strings.TrimSpace(input.CustomerID)
	if input.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.Platform.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown platform")
	}

	existing, err := s.repo.FindByMerchantAndCustomer(ctx, input.MerchantID, input.CustomerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}

	created, err := s.repo.Create(ctx, &models.Conversation{
		MerchantID:  input.MerchantID,
		Platform:    input.Platform,
		CustomerID:  input.CustomerID,
		IsAIEnabled: true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create conversation")
	}
	return created, nil
}
