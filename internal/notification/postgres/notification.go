package postgres

import (
	"context"
	"errors"

	notificationDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/notification"
	"github.com/frahmantamala/agency-ops/internal/notification"
	"gorm.io/gorm"
)

// NotificationRepository keeps a single telegram and email config row.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.RepositoryAPI {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) GetTelegramConfig(ctx context.Context) (*notificationDatamodel.TelegramConfig, error) {
	var c notificationDatamodel.TelegramConfig
	if err := r.db.WithContext(ctx).Order("id ASC").First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *NotificationRepository) SaveTelegramConfig(ctx context.Context, c *notificationDatamodel.TelegramConfig) error {
	if c.ID == 0 {
		return r.db.WithContext(ctx).Create(c).Error
	}
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *NotificationRepository) ListChatIDs(ctx context.Context, activeOnly bool) ([]*notificationDatamodel.TelegramChatID, error) {
	var out []*notificationDatamodel.TelegramChatID
	q := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotificationRepository) GetChatID(ctx context.Context, id int64) (*notificationDatamodel.TelegramChatID, error) {
	var c notificationDatamodel.TelegramChatID
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *NotificationRepository) FindChatID(ctx context.Context, chatID string) (*notificationDatamodel.TelegramChatID, error) {
	var c notificationDatamodel.TelegramChatID
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *NotificationRepository) CreateChatID(ctx context.Context, c *notificationDatamodel.TelegramChatID) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *NotificationRepository) DeleteChatID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&notificationDatamodel.TelegramChatID{}, id).Error
}

func (r *NotificationRepository) GetEmailConfig(ctx context.Context) (*notificationDatamodel.EmailConfig, error) {
	var c notificationDatamodel.EmailConfig
	if err := r.db.WithContext(ctx).Order("id ASC").First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *NotificationRepository) SaveEmailConfig(ctx context.Context, c *notificationDatamodel.EmailConfig) error {
	if c.ID == 0 {
		return r.db.WithContext(ctx).Create(c).Error
	}
	return r.db.WithContext(ctx).Save(c).Error
}
