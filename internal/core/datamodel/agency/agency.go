package agency

import (
	"time"

	"github.com/frahmantamala/agency-ops/internal/core/types"
)

type Client struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ClientName string    `gorm:"column:client_name;not null" json:"clientName"`
	Email      string    `gorm:"column:email" json:"email"`
	Phone      string    `gorm:"column:phone" json:"phone"`
	Company    string    `gorm:"column:company" json:"company"`
	Address    string    `gorm:"column:address" json:"address"`
	Status     string    `gorm:"column:status;not null" json:"status"`
	Notes      string    `gorm:"column:notes" json:"notes"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Client) TableName() string { return "clients" }

type AdAccount struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	ClientID    *int64    `gorm:"column:client_id;index" json:"clientId"`
	Platform    string    `gorm:"column:platform;not null" json:"platform"`
	AccountName string    `gorm:"column:account_name;not null" json:"accountName"`
	AccountID   string    `gorm:"column:account_id" json:"accountId"`
	Status      string    `gorm:"column:status;not null" json:"status"`
	Notes       string    `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (AdAccount) TableName() string { return "ad_accounts" }

type Campaign struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"column:name;not null" json:"name"`
	ClientID    *int64        `gorm:"column:client_id;index" json:"clientId"`
	AdAccountID *int64        `gorm:"column:ad_account_id;index" json:"adAccountId"`
	UserID      *int64        `gorm:"column:user_id;index" json:"userId"`
	Platform    string        `gorm:"column:platform" json:"platform"`
	Objective   string        `gorm:"column:objective" json:"objective"`
	Status      string        `gorm:"column:status;not null" json:"status"`
	Budget      types.Decimal `gorm:"column:budget;type:numeric(14,2)" json:"budget"`
	StartDate   *time.Time    `gorm:"column:start_date;type:date" json:"startDate"`
	EndDate     *time.Time    `gorm:"column:end_date;type:date" json:"endDate"`
	Notes       string        `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Campaign) TableName() string { return "campaigns" }

type CampaignDailySpend struct {
	ID         int64         `gorm:"primaryKey" json:"id"`
	CampaignID int64         `gorm:"column:campaign_id;not null;uniqueIndex:idx_campaign_day" json:"campaignId"`
	SpendDate  time.Time     `gorm:"column:spend_date;type:date;not null;uniqueIndex:idx_campaign_day" json:"spendDate"`
	Amount     types.Decimal `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Notes      string        `gorm:"column:notes" json:"notes"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (CampaignDailySpend) TableName() string { return "campaign_daily_spends" }

type AdCopySet struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CampaignID   *int64    `gorm:"column:campaign_id;index" json:"campaignId"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Headline     string    `gorm:"column:headline" json:"headline"`
	PrimaryText  string    `gorm:"column:primary_text" json:"primaryText"`
	Description  string    `gorm:"column:description" json:"description"`
	CallToAction string    `gorm:"column:call_to_action" json:"callToAction"`
	IsActive     bool      `gorm:"column:is_active" json:"isActive"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (AdCopySet) TableName() string { return "ad_copy_sets" }

type WorkReport struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	UserID      int64         `gorm:"column:user_id;not null;index" json:"userId"`
	ReportDate  time.Time     `gorm:"column:report_date;type:date;not null" json:"reportDate"`
	Title       string        `gorm:"column:title;not null" json:"title"`
	Description string        `gorm:"column:description" json:"description"`
	HoursWorked types.Decimal `gorm:"column:hours_worked;type:numeric(5,2)" json:"hoursWorked"`
	Status      string        `gorm:"column:status;not null" json:"status"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (WorkReport) TableName() string { return "work_reports" }
