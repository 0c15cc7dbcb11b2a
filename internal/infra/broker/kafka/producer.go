package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// Producer delivers outbox records to Kafka. Delivery is pinned to
// idempotent, fully acknowledged writes with a single in-flight request: a
// duplicated or reordered booking event costs more than slower publishing.
type Producer struct {
	inner sarama.SyncProducer
}

// NewProducer connects a synchronous producer to brokers. A nil cfg starts
// from sarama defaults; the delivery settings above are applied either way.
func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	inner, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{inner: inner}, nil
}

// Publish sends one record, keyed so that events of an aggregate land on the
// same partition in order.
func (p *Producer) Publish(_ context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	_, _, err := p.inner.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: recordHeaders(headers),
	})
	return err
}

func (p *Producer) Close() error {
	if p.inner == nil {
		return nil
	}
	return p.inner.Close()
}

func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	hs := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return hs
}
