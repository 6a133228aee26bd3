package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/tracelens/internal/message"
	"github.com/sanspareilsmyn/tracelens/internal/statistics"
)

var (
	kafkaBroker = flag.String("broker", "localhost:9092", "Kafka broker address")
	topic       = flag.String("topic", "histogram-requests", "Topic execute requests are written to")
	traceEnd    = flag.Float64("trace-end", 1000, "End time of the served trace")
)

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(*kafkaBroker),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			sugar.Errorw("Error closing kafka writer", zap.Error(err))
		}
	}()
	sugar.Infow("Starting sample producer", "topic", *topic, "broker", *kafkaBroker)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		sugar.Info("Shutdown signal received, stopping producer...")
		cancel()
	}()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for seq := 1; ; seq++ {
		select {
		case <-ticker.C:
			req := generateRequest(rng, seq, *traceEnd)
			msgBytes, err := message.EncodeRequest(req)
			if err != nil {
				sugar.Errorw("Error marshalling request", zap.Error(err))
				continue
			}

			err = writer.WriteMessages(ctx, kafka.Message{Key: []byte(req.ID), Value: msgBytes})
			if err != nil {
				if ctx.Err() != nil {
					sugar.Info("Context cancelled, exiting request loop.")
					return
				}
				sugar.Errorw("Error writing request", zap.Error(err))
			} else {
				sugar.Infow("Produced request", "payload", string(msgBytes))
			}

		case <-ctx.Done():
			sugar.Info("Producer loop stopped.")
			return
		}
	}
}

// generateRequest picks a random sub-range of [0, end) and, now and then, a
// different set of statistics.
func generateRequest(rng *rand.Rand, seq int, end float64) message.ExecuteRequest {
	begin := rng.Float64() * end * 0.9
	length := (end - begin) * (0.1 + 0.9*rng.Float64())

	req := message.ExecuteRequest{
		ID:          fmt.Sprintf("req-%d", seq),
		BeginTime:   begin,
		EndTime:     begin + length,
		RequestedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	// ~20% of the requests ask for burst statistics instead of the configured ones
	if rng.Float64() < 0.2 {
		req.Statistics = []string{statistics.NameBursts, statistics.NameAverageBurstTime}
	}
	// ~10% run until the end of the trace
	if rng.Float64() < 0.1 {
		req.EndTime = 0
	}
	return req
}
