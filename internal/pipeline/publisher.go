package pipeline

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/tracelens/internal/config"
	"github.com/sanspareilsmyn/tracelens/internal/message"
)

// messageWriter is the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes results to the result topic, keyed by request id.
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
}

func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 || cfg.ResultTopic == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.ResultTopic),
		)
		return nil, ErrInvalidKafkaConfig
	}

	w := &kafka.Writer{
		Addr:        kafka.TCP(cfg.Brokers...),
		Topic:       cfg.ResultTopic,
		Balancer:    &kafka.LeastBytes{},
		Logger:      kafkaZapLogger{logger.Named("kafka-writer").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-writer-error").WithOptions(zap.AddCallerSkip(1))},
	}

	logger.Info("Kafka publisher created",
		zap.String("topic", cfg.ResultTopic),
		zap.Strings("brokers", cfg.Brokers),
	)
	return newPublisher(w, logger), nil
}

func newPublisher(writer messageWriter, logger *zap.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, r *message.Result) error {
	data, err := message.EncodeResult(r)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(r.RequestID), Value: data}); err != nil {
		return fmt.Errorf("%w: %w", ErrKafkaWriteFailed, err)
	}
	p.logger.Debug("Result published",
		zap.String("request_id", r.RequestID),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
