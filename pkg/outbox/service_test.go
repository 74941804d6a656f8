package outbox

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox/payloads"
)

const outboxTestDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
    id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    aggregate_type TEXT NOT NULL,
    aggregate_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    published_at DATETIME,
    attempt_count INTEGER NOT NULL DEFAULT 0,
    last_error TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_outbox_events_pending_web_push
    ON outbox_events (aggregate_id)
    WHERE published_at IS NULL AND event_type = 'web_push_requested';
`

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec(outboxTestDDL).Error)
	t.Cleanup(func() {
		db.Exec("DELETE FROM outbox_events")
	})
	return db
}

func newOutboxTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(NewRepository(db), logg)
}

func statusChangedEvent(saleID uuid.UUID, from, to enums.OrderStatus) DomainEvent {
	return DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateSale,
		AggregateID:   saleID,
		Version:       1,
		Data: payloads.OrderStatusChangedEvent{
			SaleID:     saleID,
			FromStatus: from,
			ToStatus:   to,
		},
	}
}

func TestEmitAllowsSequentialEventsOnSameAggregate(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := newOutboxTestService(t, db)
	ctx := context.Background()
	saleID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, statusChangedEvent(saleID, enums.OrderStatusPending, enums.OrderStatusDelivering))
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, statusChangedEvent(saleID, enums.OrderStatusDelivering, enums.OrderStatusCompleted))
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", saleID).
		Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestEmitIfNotExistsCoalescesPendingWebPush(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := newOutboxTestService(t, db)
	ctx := context.Background()
	saleID := uuid.New()

	webPush := DomainEvent{
		EventType:     enums.EventWebPushRequested,
		AggregateType: enums.AggregateSale,
		AggregateID:   saleID,
		Version:       1,
		Data: payloads.WebPushRequestedEvent{
			SaleID: saleID,
			OID:    "ord_abc123",
		},
	}

	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return svc.EmitIfNotExists(ctx, tx, webPush)
		})
		require.NoError(t, err)
	}

	var rows []models.OutboxEvent
	require.NoError(t, db.
		Where("aggregate_id = ? AND event_type = ?", saleID, enums.EventWebPushRequested).
		Find(&rows).Error)
	require.Len(t, rows, 1)

	// Once the pending intent is published, a fresh confirm queues a new one.
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("id = ?", rows[0].ID).
		Update("published_at", gorm.Expr("CURRENT_TIMESTAMP")).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.EmitIfNotExists(ctx, tx, webPush)
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ? AND event_type = ?", saleID, enums.EventWebPushRequested).
		Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
