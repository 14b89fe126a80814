package notification

import "time"

type TelegramConfig struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	BotToken  string    `gorm:"column:bot_token" json:"botToken"`
	IsEnabled bool      `gorm:"column:is_enabled" json:"isEnabled"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (TelegramConfig) TableName() string { return "telegram_configs" }

type TelegramChatID struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ChatID    string    `gorm:"column:chat_id;uniqueIndex;not null" json:"chatId"`
	Name      string    `gorm:"column:name" json:"name"`
	IsActive  bool      `gorm:"column:is_active" json:"isActive"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (TelegramChatID) TableName() string { return "telegram_chat_ids" }

type EmailConfig struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	APIKey      string    `gorm:"column:api_key" json:"apiKey"`
	FromAddress string    `gorm:"column:from_address" json:"fromAddress"`
	Recipients  string    `gorm:"column:recipients" json:"recipients"`
	IsEnabled   bool      `gorm:"column:is_enabled" json:"isEnabled"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (EmailConfig) TableName() string { return "email_configs" }
