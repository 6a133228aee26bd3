// Package pipeline runs histograms for the outside world: once from the
// configuration, or continuously for requests read from Kafka.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/tracelens/internal/config"
	"github.com/sanspareilsmyn/tracelens/internal/message"
	"github.com/sanspareilsmyn/tracelens/internal/tracemodel"
)

const (
	channelBufferSize = 100
	oneShotRequestID  = "oneshot"
	snippetLength     = 64
)

// Pipeline orchestrates the streaming stages: consumer, parsing, execution, reporting.
type Pipeline struct {
	consumer  *Consumer
	executor  *Executor
	reporter  *Reporter
	publisher *Publisher
	logger    *zap.Logger

	rawMessages chan []byte
	requests    chan message.ExecuteRequest
	results     chan *message.Result
}

// New creates and wires up a streaming pipeline over model. Results are
// rendered to out unless it is nil.
func New(cfg *config.Config, model *tracemodel.Model, out io.Writer, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")
	initLogger.Debug("Creating pipeline components...")

	rawMessages := make(chan []byte, channelBufferSize)
	consumer, err := NewConsumer(cfg.Kafka, rawMessages, logger.Named("consumer"))
	if err != nil {
		initLogger.Error("Failed to create consumer", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
	}

	var publisher *Publisher
	if cfg.Kafka.ResultTopic != "" {
		publisher, err = NewPublisher(cfg.Kafka, logger.Named("publisher"))
		if err != nil {
			initLogger.Error("Failed to create publisher", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrPublisherCreationFailed, err)
		}
	}

	return assemble(cfg, model, rawMessages, consumer, publisher, out, logger)
}

func assemble(cfg *config.Config, model *tracemodel.Model, rawMessages chan []byte, consumer *Consumer, publisher *Publisher, out io.Writer, logger *zap.Logger) (*Pipeline, error) {
	requests := make(chan message.ExecuteRequest, channelBufferSize)
	results := make(chan *message.Result, channelBufferSize)

	executor, err := NewExecutor(cfg.Histogram, model, requests, results, logger.Named("executor"))
	if err != nil {
		return nil, err
	}

	var rp ResultPublisher
	if publisher != nil {
		rp = publisher
	}
	reporter := NewReporter(cfg.Histogram.Thresholds, results, rp, out, logger.Named("reporter"))

	p := &Pipeline{
		consumer:    consumer,
		executor:    executor,
		reporter:    reporter,
		publisher:   publisher,
		logger:      logger.Named("pipeline"),
		rawMessages: rawMessages,
		requests:    requests,
		results:     results,
	}
	p.logger.Info("Pipeline instance created successfully")
	return p, nil
}

// Run starts all pipeline components and waits for them to complete or context cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	var wg sync.WaitGroup
	pipelineErr := make(chan error, 4) // consumer, parser, executor, reporter

	defer p.closePublisher()

	sugar.Info("Pipeline Run: Starting components...")

	wg.Add(4)
	go p.runConsumer(ctx, &wg, pipelineErr)
	go p.runParser(ctx, &wg)
	go p.runExecutor(ctx, &wg, pipelineErr)
	go p.runReporter(ctx, &wg, pipelineErr)

	var firstErr error
	select {
	case <-ctx.Done():
		sugar.Info("Pipeline Run: Context cancelled. Waiting for components to finish...")
		firstErr = ctx.Err()
	case err := <-pipelineErr:
		sugar.Errorw("Pipeline Run: Received error from a component, initiating shutdown...", zap.Error(err))
		firstErr = err
	}

	sugar.Debug("Pipeline Run: Waiting on WaitGroup...")
	wg.Wait()
	sugar.Info("Pipeline Run: All components finished.")

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

func (p *Pipeline) closePublisher() {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Close(); err != nil {
		p.logger.Error("Failed to close publisher", zap.Error(err))
	}
}

func (p *Pipeline) runConsumer(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.rawMessages)
		p.logger.Debug("Raw messages channel closed")
	}()

	if err := p.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Consumer component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrConsumerRunFailed, err)
	}
}

// runParser turns raw messages into execute requests, dropping invalid ones.
func (p *Pipeline) runParser(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		close(p.requests)
		p.logger.Debug("Requests channel closed")
	}()

	parserLogger := p.logger.Named("parser").Sugar()
	parserLogger.Debug("Starting parser goroutine...")

	for {
		select {
		case rawMsg, ok := <-p.rawMessages:
			if !ok {
				parserLogger.Debug("Parser finished (raw message channel closed).")
				return
			}

			req, err := message.ParseRequest(rawMsg)
			if err != nil {
				requestsTotal.WithLabelValues("invalid").Inc()
				parserLogger.Warnw("Failed to parse request, skipping",
					zap.String("payload", message.Snippet(rawMsg, snippetLength)),
					zap.Error(err),
				)
				continue
			}

			select {
			case p.requests <- req:

			case <-ctx.Done():
				parserLogger.Debug("Parser context cancelled during send.", zap.Error(ctx.Err()))
				return
			}

		case <-ctx.Done():
			parserLogger.Debug("Parser context cancelled while waiting for raw message.", zap.Error(ctx.Err()))
			return
		}
	}
}

func (p *Pipeline) runExecutor(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.results)
		p.logger.Debug("Results channel closed")
	}()

	if err := p.executor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Executor component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrExecutorRunFailed, err)
	}
}

func (p *Pipeline) runReporter(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()

	if err := p.reporter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Reporter component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrReporterRunFailed, err)
	}
}

// RunOnce executes the configured histogram over the configured time range
// and reports the result.
func RunOnce(ctx context.Context, cfg *config.Config, model *tracemodel.Model, out io.Writer, logger *zap.Logger) (*message.Result, error) {
	executor, err := NewExecutor(cfg.Histogram, model, nil, nil, logger.Named("executor"))
	if err != nil {
		return nil, err
	}

	var publisher ResultPublisher
	if cfg.Kafka.ResultTopic != "" {
		p, err := NewPublisher(cfg.Kafka, logger.Named("publisher"))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPublisherCreationFailed, err)
		}
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("Failed to close publisher", zap.Error(err))
			}
		}()
		publisher = p
	}
	reporter := NewReporter(cfg.Histogram.Thresholds, nil, publisher, out, logger.Named("reporter"))

	result, err := executor.Execute(message.ExecuteRequest{
		ID:        oneShotRequestID,
		BeginTime: cfg.Histogram.BeginTime,
		EndTime:   cfg.Histogram.EndTime,
	})
	if err != nil {
		return nil, err
	}
	reporter.Report(ctx, result)
	return result, nil
}
