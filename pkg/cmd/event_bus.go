package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowline/flowline/pkg/eventbus"
)

// NewEventBus selects the event bus provider. Kafka backs multi-node
// deployments; the default in-process channel suits single-node runs.
func NewEventBus(provider, brokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	switch provider {
	case "kafka":
		bus, err := eventbus.NewKafkaEventBus(strings.Split(brokers, ","), "flowline")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka event bus: %w", err)
		}

		return bus, nil
	case "", "gochannel":
		return eventbus.NewGoChannelEventBus(), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
