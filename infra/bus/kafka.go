package bus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/autoride/autoride/core/events"
	"github.com/autoride/autoride/core/logger"
	"github.com/autoride/autoride/core/pricing"
)

// KafkaPublisher publishes engine events to Kafka, one writer per topic.
// Writers are created lazily so only topics actually used get one.
type KafkaPublisher struct {
	brokers []string
	log     logger.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaPublisher creates a KafkaPublisher for the given brokers.
func NewKafkaPublisher(brokers []string, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		brokers: brokers,
		log:     log,
		writers: make(map[string]*kafka.Writer),
	}
}

// Publish marshals the payload to JSON and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer(topic).WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
}

// Close closes all writers, returning the first error encountered.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return first
}

func (p *KafkaPublisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:         kafka.TCP(p.brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		}
		p.writers[topic] = w
	}
	return w
}

// StartPricingConsumer consumes surge updates from the pricing topic and
// applies them to the shared surge holder. It runs until the context is
// canceled. Malformed messages are logged and skipped.
func StartPricingConsumer(ctx context.Context, cfg Config, surge *pricing.Surge, log logger.Logger) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaGroupID,
		Topic:   events.TopicPricingUpdates,
	})

	go func() {
		defer func() {
			if err := reader.Close(); err != nil {
				log.Warnf("close pricing consumer: %v", err)
			}
		}()
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warnf("read pricing update: %v", err)
				continue
			}
			var update events.PricingUpdate
			if err := json.Unmarshal(msg.Value, &update); err != nil {
				log.Warnf("malformed pricing update: %v", err)
				continue
			}
			surge.Set(update.SurgeMultiplier)
			log.Infof("surge multiplier set to %.2fx (%s)", surge.Multiplier(), update.Reason)
		}
	}()
}
