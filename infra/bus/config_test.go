package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoride/autoride/infra/logger"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "none", cfg.Backend)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
}

func TestConfigValidate(t *testing.T) {
	for _, backend := range []string{"kafka", "mqtt", "none"} {
		assert.NoError(t, Config{Backend: backend}.Validate())
	}
	assert.Error(t, Config{Backend: "nats"}.Validate())
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "nats"}, logger.NopLogger{})
	assert.Error(t, err)
}

func TestNewNoneBackend(t *testing.T) {
	pub, err := New(Config{Backend: "none"}, logger.NopLogger{})
	require.NoError(t, err)

	assert.NoError(t, pub.Publish(context.Background(), "rides.requested", "k", map[string]int{"a": 1}))
	assert.NoError(t, pub.Close())
}

func TestNewKafkaBackendLazyWriters(t *testing.T) {
	// Writers are lazy, so constructing the publisher needs no broker.
	pub, err := New(Config{Backend: "kafka", KafkaBrokers: []string{"localhost:9092"}}, logger.NopLogger{})
	require.NoError(t, err)
	assert.NoError(t, pub.Close())
}
