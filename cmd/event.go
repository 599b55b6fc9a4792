package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/frahmantamala/safety-management/internal/core/events"
	"github.com/frahmantamala/safety-management/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Inspect certificate events",
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test certificate event",
	Long:  `Publish a synthetic certificate event through the bus, forwarding it to Kafka when enabled.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var tailEventCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print certificate events from the Kafka topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tailEvents()
	},
}

var (
	eventTenant     int64
	eventGroup      string
	eventFromOldest bool
)

func publishTestEvent(eventType string) error {
	if !slices.Contains(events.CertificateEventTypes, eventType) {
		return fmt.Errorf("unknown event type %q, expected one of %v", eventType, events.CertificateEventTypes)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	bus := events.NewEventBus(lg)
	bus.SubscribeMany(events.CertificateEventTypes, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event", "event_id", event.EventID(), "event_type", event.EventType(), "payload", event.Payload())
		return nil
	})

	if k := cfg.Events.Kafka; k.Enabled {
		forwarder := events.NewKafkaForwarder(events.NewKafkaWriter(k.Brokers, k.Topic), lg, k.MaxRetries, k.Timeout)
		defer forwarder.Close()
		forwarder.Register(bus)
	}

	var event events.Event
	if eventType == events.EventTypeCertificateStatusSynced {
		event = events.NewStatusSyncedEvent(eventTenant, 0, 0)
	} else {
		event = events.NewCertificateEvent(eventType, eventTenant, 0, 0, "active")
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.PublishSync(context.Background(), event); err != nil {
		return err
	}
	lg.Info("test event published")
	return nil
}

func tailEvents() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	k := cfg.Events.Kafka
	if len(k.Brokers) == 0 || k.Topic == "" {
		return fmt.Errorf("events.kafka.brokers and events.kafka.topic must be set")
	}

	start := kafka.LastOffset
	if eventFromOldest {
		start = kafka.FirstOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     k.Brokers,
		Topic:       k.Topic,
		GroupID:     eventGroup,
		StartOffset: start,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		_ = enc.Encode(map[string]any{
			"key":       string(msg.Key),
			"partition": msg.Partition,
			"offset":    msg.Offset,
			"time":      msg.Time,
			"event":     json.RawMessage(msg.Value),
		})
	}
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventTenant, "tenant", 1, "tenant id stamped on the event")
	tailEventCmd.Flags().StringVar(&eventGroup, "group", "", "consumer group id (empty reads without committing)")
	tailEventCmd.Flags().BoolVar(&eventFromOldest, "from-beginning", false, "start at the oldest retained event")

	eventCmd.AddCommand(publishEventCmd)
	eventCmd.AddCommand(tailEventCmd)
	rootCmd.AddCommand(eventCmd)
}
