package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSender produces events to one topic, keyed by order ID so all events
// of an order land on the same partition.
type KafkaSender struct {
	client *kgo.Client
	topic  string
}

func NewKafkaSender(brokers []string, topic string) (*KafkaSender, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaSender{client: client, topic: topic}, nil
}

func (s *KafkaSender) Name() string { return "kafka" }

func (s *KafkaSender) Send(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.OrderID),
		Value: body,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", event.Kind, err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	s.client.Close()
	return nil
}
