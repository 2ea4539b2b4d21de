package repository

import (
	"context"
	"time"

	"auri/pkg/kafka"
)

// RiskEvent is the compact per-wallet event published after each analysis.
type RiskEvent struct {
	Wallet string `json:"wallet"`
	Lock   bool   `json:"lock"`
	State  string `json:"state"`
	TS     int64  `json:"ts"`
}

// KafkaRiskEvents publishes risk events keyed by wallet.
type KafkaRiskEvents struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaRiskEvents creates the publisher.
func NewKafkaRiskEvents(producer *kafka.Producer, topic string) *KafkaRiskEvents {
	return &KafkaRiskEvents{producer: producer, topic: topic}
}

// PublishRiskEvent emits one event for the wallet.
func (p *KafkaRiskEvents) PublishRiskEvent(ctx context.Context, wallet string, lock bool, state string) error {
	return p.producer.Publish(ctx, p.topic, []byte(wallet), RiskEvent{
		Wallet: wallet,
		Lock:   lock,
		State:  state,
		TS:     time.Now().UnixMilli(),
	})
}

// NoopPublisher satisfies the publisher interface when events are disabled.
type NoopPublisher struct{}

// PublishRiskEvent does nothing.
func (NoopPublisher) PublishRiskEvent(ctx context.Context, wallet string, lock bool, state string) error {
	return nil
}
