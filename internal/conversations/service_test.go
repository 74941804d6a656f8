package conversations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
)

func setupConversationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	conversations := `
CREATE TABLE IF NOT EXISTS conversations (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  platform TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  customer_name TEXT,
  is_ai_enabled INTEGER NOT NULL DEFAULT 1,
  ai_disabled_at DATETIME,
  ai_enable_delay_secs INTEGER NOT NULL DEFAULT 0,
  chat_summary TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(conversations).Error)
	return db
}

func newTestDirectory(t *testing.T) (Directory, *gorm.DB) {
	t.Helper()

	db := setupConversationsTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc, db
}

func TestStartConversation_createsAndReuses(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()
	merchantID := uuid.New()

	created, err := svc.StartConversation(ctx, StartConversationInput{
		MerchantID: merchantID,
		Platform:   enums.PlatformMessenger,
		CustomerID: "psid-100",
	})
	require.NoError(t, err)
	assert.True(t, created.IsAIEnabled)

	again, err := svc.StartConversation(ctx, StartConversationInput{
		MerchantID: merchantID,
		Platform:   enums.PlatformMessenger,
		CustomerID: "psid-100",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestStartConversation_rejectsBadInput(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := svc.StartConversation(ctx, StartConversationInput{
		MerchantID: uuid.New(),
		Platform:   enums.PlatformMessenger,
		CustomerID: "   ",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.StartConversation(ctx, StartConversationInput{
		MerchantID: uuid.New(),
		Platform:   enums.Platform("carrier-pigeon"),
		CustomerID: "psid-200",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestFindConversation_scopedToMerchant(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()
	merchantID := uuid.New()

	created, err := svc.StartConversation(ctx, StartConversationInput{
		MerchantID: merchantID,
		Platform:   enums.PlatformMessenger,
		CustomerID: "psid-300",
	})
	require.NoError(t, err)

	found, err := svc.FindConversation(ctx, merchantID, "psid-300")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.FindConversation(ctx, uuid.New(), "psid-300")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	byID, err := svc.GetConversation(ctx, merchantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	_, err = svc.GetConversation(ctx, uuid.New(), created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
