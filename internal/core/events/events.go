package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeExpenseCreated      = "expense.created"
	EventTypeWorkReportSubmitted = "workreport.submitted"
	EventTypeDataImported        = "data.imported"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type ExpenseCreatedEvent struct {
	BaseEvent
	ExpenseID   int64  `json:"expense_id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	CreatedBy   int64  `json:"created_by"`
}

func NewExpenseCreatedEvent(expenseID int64, description, amount, currency string, createdBy int64) *ExpenseCreatedEvent {
	return &ExpenseCreatedEvent{
		BaseEvent: newBase(EventTypeExpenseCreated, map[string]interface{}{
			"expense_id":  expenseID,
			"description": description,
			"amount":      amount,
			"currency":    currency,
			"created_by":  createdBy,
		}),
		ExpenseID:   expenseID,
		Description: description,
		Amount:      amount,
		Currency:    currency,
		CreatedBy:   createdBy,
	}
}

type WorkReportSubmittedEvent struct {
	BaseEvent
	ReportID   int64     `json:"report_id"`
	UserID     int64     `json:"user_id"`
	Title      string    `json:"title"`
	ReportDate time.Time `json:"report_date"`
}

func NewWorkReportSubmittedEvent(reportID, userID int64, title string, reportDate time.Time) *WorkReportSubmittedEvent {
	return &WorkReportSubmittedEvent{
		BaseEvent: newBase(EventTypeWorkReportSubmitted, map[string]interface{}{
			"report_id":   reportID,
			"user_id":     userID,
			"title":       title,
			"report_date": reportDate.Format("2006-01-02"),
		}),
		ReportID:   reportID,
		UserID:     userID,
		Title:      title,
		ReportDate: reportDate,
	}
}

type DataImportedEvent struct {
	BaseEvent
	Imported int   `json:"imported"`
	Updated  int   `json:"updated"`
	Skipped  int   `json:"skipped"`
	UserID   int64 `json:"user_id"`
}

func NewDataImportedEvent(imported, updated, skipped int, userID int64) *DataImportedEvent {
	return &DataImportedEvent{
		BaseEvent: newBase(EventTypeDataImported, map[string]interface{}{
			"imported": imported,
			"updated":  updated,
			"skipped":  skipped,
			"user_id":  userID,
		}),
		Imported: imported,
		Updated:  updated,
		Skipped:  skipped,
		UserID:   userID,
	}
}
