package bus

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/autoride/autoride/core/logger"
)

// mqttPubTimeout bounds each publish token wait.
const mqttPubTimeout = 5 * time.Second

// MQTTPublisher publishes engine events over MQTT at QoS 1. Topic names
// are used as-is, matching the Kafka topic layout.
type MQTTPublisher struct {
	client mqtt.Client
	log    logger.Logger
}

// NewMQTTPublisher connects to the broker and returns the publisher.
func NewMQTTPublisher(broker, clientID string, log logger.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Infof("connected to mqtt broker %s", broker)
	return &MQTTPublisher{client: client, log: log}, nil
}

// Publish marshals the payload to JSON and publishes it. The key is
// ignored; MQTT has no partitioning.
func (p *MQTTPublisher) Publish(_ context.Context, topic, _ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := p.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(mqttPubTimeout) {
		return context.DeadlineExceeded
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	return nil
}
