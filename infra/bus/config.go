// Package bus provides the external event publishers: Kafka for the
// platform event backbone, MQTT for lightweight deployments and a no-op
// for standalone runs.
package bus

import (
	"fmt"

	"github.com/autoride/autoride/core/events"
	"github.com/autoride/autoride/infra/logger"
)

// Config selects and configures the external bus backend.
type Config struct {
	// Backend is one of "kafka", "mqtt" or "none".
	Backend string `json:"backend"`

	KafkaBrokers []string `json:"kafka_brokers"`
	KafkaGroupID string   `json:"kafka_group_id"`

	MQTTBroker   string `json:"mqtt_broker"`
	MQTTClientID string `json:"mqtt_client_id"`
}

// SetDefaults applies the standalone defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if len(c.KafkaBrokers) == 0 {
		c.KafkaBrokers = []string{"localhost:9092"}
	}
	if c.KafkaGroupID == "" {
		c.KafkaGroupID = "autoride-engine"
	}
	if c.MQTTBroker == "" {
		c.MQTTBroker = "tcp://localhost:1883"
	}
	if c.MQTTClientID == "" {
		c.MQTTClientID = "autoride-engine"
	}
}

// Validate checks the backend selection.
func (c Config) Validate() error {
	switch c.Backend {
	case "kafka", "mqtt", "none":
		return nil
	default:
		return fmt.Errorf("bus: unknown backend %q", c.Backend)
	}
}

// New builds the configured publisher.
func New(cfg Config, log logger.Logger) (events.Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, log), nil
	case "mqtt":
		return NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID, log)
	default:
		log.Infof("external bus disabled")
		return NopPublisher{}, nil
	}
}
