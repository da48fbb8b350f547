package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: list event types and publish sample events to the bus and broker`,
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the event types raised by the service",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range events.Types {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a sample event",
	Long:      `Publish a sample event to the event bus, and to the broker when one is configured, for testing and debugging`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: events.Types,
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

var (
	eventOwner   string
	eventMessage string
)

func sampleEvent(eventType, ownerID, message string) (events.Event, error) {
	switch eventType {
	case events.EventTypeTransactionRecorded:
		return events.NewTransactionRecordedEvent(ownerID, uuid.NewString(), "expense", "10.00",
			calendar.Today(time.Local).String()), nil
	case events.EventTypeBudgetAlertRaised:
		return events.NewBudgetAlertRaisedEvent(ownerID, uuid.NewString(), uuid.NewString(),
			calendar.Today(time.Local).MonthKey().String(), "warning", message), nil
	case events.EventTypeUserRegistered:
		return events.NewUserRegisteredEvent(ownerID, "demo@example.com"), nil
	}
	return nil, fmt.Errorf("unknown event type %q (want one of %s)", eventType, strings.Join(events.Types, ", "))
}

func publishSampleEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	event, err := sampleEvent(eventType, eventOwner, eventMessage)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("sample handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"owner_id", event.OwnerID())
		return nil
	})

	if cfg, err := loadConfig(configPath); err == nil && cfg.Events.AMQPURL != "" {
		forwarder, err := events.DialForwarder(cfg.Events.AMQPURL, cfg.Events.Exchange, lg)
		if err != nil {
			return fmt.Errorf("connect to broker: %w", err)
		}
		defer forwarder.Close()
		forwarder.Attach(bus)
	}

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	lg.Info("sample event published")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventOwner, "owner", "cli", "owner id carried by the event")
	publishEventCmd.Flags().StringVar(&eventMessage, "message", "sample alert from the cli", "message of a budget alert event")

	eventCmd.AddCommand(listEventsCmd)
	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
