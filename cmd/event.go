package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/agency-ops/internal/core/events"
	"github.com/frahmantamala/agency-ops/internal/notification"
	"github.com/frahmantamala/agency-ops/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample domain events to check the notification subscribers end to end.`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a sample event and deliver its notification",
	Long:      `Publish a sample event through the event bus and deliver the resulting notification to the configured channels synchronously.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeExpenseCreated, events.EventTypeWorkReportSubmitted, events.EventTypeDataImported},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var eventData string

// deliverNow satisfies notification.Enqueuer by sending inline.
type deliverNow struct {
	ctx     context.Context
	deliver notification.DeliverFunc
	err     error
}

func (d *deliverNow) Enqueue(msg notification.Message) bool {
	d.err = d.deliver(d.ctx, msg)
	return d.err == nil
}

func sampleEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeExpenseCreated:
		return events.NewExpenseCreatedEvent(0, eventData, "0", "IDR", 0), nil
	case events.EventTypeWorkReportSubmitted:
		return events.NewWorkReportSubmittedEvent(0, 0, eventData, time.Now()), nil
	case events.EventTypeDataImported:
		return events.NewDataImportedEvent(0, 0, 0, 0), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

func publishTestEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := initServices(cfg, db, lg)
	if err != nil {
		return err
	}

	event, err := sampleEvent(eventType)
	if err != nil {
		return err
	}

	ctx := context.Background()
	queue := &deliverNow{ctx: ctx, deliver: svc.Notification.Deliver}
	notification.RegisterSubscribers(svc.EventBus, queue)

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())
	if err := svc.EventBus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if queue.err != nil {
		return fmt.Errorf("failed to deliver notification: %w", queue.err)
	}

	lg.Info("test event delivered")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Text placed in the sample event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
