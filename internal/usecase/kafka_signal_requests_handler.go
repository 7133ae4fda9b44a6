package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"
)

// KafkaSignalRequestsHandler turns {symbol, timeframe} messages into
// generated signals.
type KafkaSignalRequestsHandler struct {
	topic     string
	generator domsvc.SignalGenerator
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewKafkaSignalRequestsHandler(topic string, generator domsvc.SignalGenerator, metrics domrepo.Metrics) *KafkaSignalRequestsHandler {
	return &KafkaSignalRequestsHandler{topic: topic, generator: generator, metrics: metrics}
}

func (h *KafkaSignalRequestsHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *KafkaSignalRequestsHandler) Topic() string { return h.topic }

// Handle drops requests that can never succeed: undecodable payloads are
// returned as permanent, invalid ones as nil. Data failures are returned for retry.
func (h *KafkaSignalRequestsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol    string `json:"symbol"`
		Timeframe string `json:"timeframe"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.drop("consumer_unmarshal", err)
		return fmt.Errorf("%w: decode signal request: %v", pkgkafka.ErrPermanent, err)
	}
	if m.Timeframe == "" {
		m.Timeframe = string(domrepo.DefaultTimeframe())
	}

	_, err := h.generator.GenerateSignal(ctx, m.Symbol, m.Timeframe)
	switch {
	case err == nil:
		return nil
	case models.IsValidation(err):
		h.drop("consumer_validation", err)
		return nil
	case errors.Is(err, models.ErrGenerationInFlight):
		return nil
	default:
		if h.metrics != nil {
			h.metrics.RecordError("consumer_generate")
		}
		return err
	}
}

func (h *KafkaSignalRequestsHandler) drop(kind string, err error) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
	if h.l != nil {
		h.l.Warn("signal request dropped", applogger.String("topic", h.topic), applogger.Error(err))
	}
}

var _ pkgkafka.MessageHandler = (*KafkaSignalRequestsHandler)(nil)
