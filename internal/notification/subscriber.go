package notification

import (
	"context"
	"fmt"

	"github.com/frahmantamala/agency-ops/internal/core/events"
)

type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

type Enqueuer interface {
	Enqueue(msg Message) bool
}

// RegisterSubscribers turns domain events into queued notifications.
func RegisterSubscribers(bus Subscriber, queue Enqueuer) {
	bus.Subscribe(events.EventTypeExpenseCreated, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.ExpenseCreatedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		queue.Enqueue(ExpenseCreatedMessage(e))
		return nil
	})

	bus.Subscribe(events.EventTypeWorkReportSubmitted, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.WorkReportSubmittedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		queue.Enqueue(WorkReportSubmittedMessage(e))
		return nil
	})

	bus.Subscribe(events.EventTypeDataImported, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.DataImportedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		queue.Enqueue(DataImportedMessage(e))
		return nil
	})
}

func ExpenseCreatedMessage(e *events.ExpenseCreatedEvent) Message {
	return Message{
		Subject: "New expense recorded",
		Text:    fmt.Sprintf("Expense #%d: %s (%s %s)", e.ExpenseID, e.Description, e.Amount, e.Currency),
	}
}

func WorkReportSubmittedMessage(e *events.WorkReportSubmittedEvent) Message {
	return Message{
		Subject: "Work report submitted",
		Text:    fmt.Sprintf("Report #%d \"%s\" for %s submitted by user %d", e.ReportID, e.Title, e.ReportDate.Format("2006-01-02"), e.UserID),
	}
}

func DataImportedMessage(e *events.DataImportedEvent) Message {
	return Message{
		Subject: "Data import finished",
		Text:    fmt.Sprintf("%d imported, %d updated, %d skipped", e.Imported, e.Updated, e.Skipped),
	}
}
