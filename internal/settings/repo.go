package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
)

// Repository persists per-merchant channel settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, setting *models.Setting) error
	FindByMerchantAndPlatform(ctx context.Context, merchantID uuid.UUID, platform enums.Platform) (*models.Setting, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Setting, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, setting *models.Setting) error {
	if setting == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "setting is required")
	}
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant_id"}, {Name: "platform"}},
			DoUpdates: clause.AssignmentColumns([]string{"webhook_url", "access_token", "fallback_message", "updated_at"}),
		}).
		Create(setting).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert setting")
	}
	return nil
}

func (r *repository) FindByMerchantAndPlatform(ctx context.Context, merchantID uuid.UUID, platform enums.Platform) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND platform = ?", merchantID, platform).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "channel settings not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find setting")
	}
	return &setting, nil
}

func (r *repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Setting, error) {
	var settings []models.Setting
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("platform ASC").
		Find(&settings).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	return settings, nil
}
