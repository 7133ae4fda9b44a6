package repository

import (
	"context"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
)

// MessageProducer is the part of pkg/kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaSignalPublisher emits persisted signals as JSON, keyed by symbol so a
// symbol's signals stay ordered within one partition.
type KafkaSignalPublisher struct {
	producer MessageProducer
	topic    string
}

func NewKafkaSignalPublisher(producer MessageProducer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, s models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.TokenSymbol), s)
}

var _ domrepo.SignalPublisher = (*KafkaSignalPublisher)(nil)
