package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"FinSignal/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer reads registered topics in a consumer group and hands each message
// to its handler with bounded retries. Offsets are committed after handling,
// so a message that keeps failing is skipped once retries are exhausted.
type Consumer struct {
	cfg      *ConsumerConfig
	handlers map[string]MessageHandler
	readers  []*kafka.Reader
	l        *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "default",
		WorkerCount: 1,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	return &Consumer{cfg: cfg, handlers: make(map[string]MessageHandler)}, nil
}

func (c *Consumer) SetLogger(l *logger.Logger) { c.l = l }

// RegisterHandler registers a message handler for its topic. A second handler
// for the same topic is ignored.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		if c.l != nil {
			c.l.Warn("kafka consumer: handler already registered", logger.String("topic", topic))
		}
		return
	}
	c.handlers[topic] = handler
}

// Start launches WorkerCount readers per registered topic. Members of the same
// group share partitions, so workers never see the same message.
func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	for topic, handler := range c.handlers {
		for i := 0; i < c.cfg.WorkerCount; i++ {
			r := kafka.NewReader(kafka.ReaderConfig{
				Brokers:  c.cfg.Brokers,
				Topic:    topic,
				GroupID:  c.cfg.GroupID,
				MinBytes: c.cfg.MinBytes,
				MaxBytes: c.cfg.MaxBytes,
			})
			c.readers = append(c.readers, r)
			c.wg.Add(1)
			go c.consume(ctx, r, handler)
		}
	}
	if c.l != nil {
		c.l.Info("kafka consumer: started", logger.Int("topics", len(c.handlers)), logger.Int("workers", c.cfg.WorkerCount))
	}
	return nil
}

// Stop stops the Kafka consumer gracefully.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		case <-done:
		}

		for _, r := range c.readers {
			if err := r.Close(); err != nil && c.l != nil {
				c.l.Warn("kafka consumer: close reader", logger.Error(err))
			}
		}
	})
	return stopErr
}

func (c *Consumer) consume(ctx context.Context, r *kafka.Reader, h MessageHandler) {
	defer c.wg.Done()
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if c.l != nil {
				c.l.Error("kafka consumer: fetch", logger.String("topic", h.Topic()), logger.Error(err))
			}
			continue
		}

		if err := c.process(ctx, h, msg.Value); err != nil && c.l != nil {
			c.l.Error("kafka consumer: giving up on message",
				logger.String("topic", h.Topic()),
				logger.Int64("offset", msg.Offset),
				logger.Error(err))
		}
		if ctx.Err() != nil {
			return
		}
		if err := r.CommitMessages(ctx, msg); err != nil && c.l != nil {
			c.l.Warn("kafka consumer: commit", logger.String("topic", h.Topic()), logger.Error(err))
		}
	}
}

// process runs the handler with retries and panic recovery.
func (c *Consumer) process(ctx context.Context, h MessageHandler, data []byte) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = safeHandle(ctx, h, data)
		if err == nil || errors.Is(err, ErrPermanent) || attempt > c.cfg.RetryMax {
			return err
		}
		select {
		case <-time.After(backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ErrPermanent marks a handler error that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

func safeHandle(ctx context.Context, h MessageHandler, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: handler panic: %v", ErrPermanent, r)
		}
	}()
	return h.Handle(ctx, data)
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	if attempt < 1 {
		attempt = 1
	}
	exp := max
	if attempt < 32 {
		if e := min * time.Duration(1<<uint(attempt-1)); e > 0 && e < max {
			exp = e
		}
	}
	// jitter up to 50%
	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int63n(half))
}
