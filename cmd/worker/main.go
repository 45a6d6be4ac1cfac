package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/OFFIS-RIT/kiwi-persona/internal/config"
	"github.com/OFFIS-RIT/kiwi-persona/internal/provider"
	"github.com/OFFIS-RIT/kiwi-persona/internal/queue"
	"github.com/OFFIS-RIT/kiwi-persona/internal/storage"
	"github.com/OFFIS-RIT/kiwi-persona/internal/util"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
	s3loader "github.com/OFFIS-RIT/kiwi-persona/pkg/loader/s3"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		Format: util.GetEnv("LOG_FORMAT"),
	})
	logger.Init(consoleLogger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", "err", err)
	}
	if cfg.S3.Bucket == "" {
		logger.Fatal("AWS_BUCKET is required for the worker")
	}

	// Init s3 client
	client, err := storage.NewS3Client(ctx, cfg.S3)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}

	p, closer, err := provider.NewPipeline(cfg)
	if err != nil {
		logger.Fatal("Failed to create pipeline", "err", err)
	}
	defer closer.Close()

	// Init rabbitmq
	conn, err := queue.Init()
	if err != nil {
		logger.Fatal("Failed to connect to queue", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.RankQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// Only one job is delivered at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	handler := queue.NewRankHandler(queue.NewRankHandlerParams{
		Runner: p,
		Sources: func(prefix string) loader.DocumentSource {
			return s3loader.NewS3FileLoaderWithClient(cfg.S3.Bucket, prefix, client)
		},
		Sink:      storage.NewStore(cfg.S3.Bucket, client),
		Publisher: ch,
		TopK:      cfg.TopK,
	})

	resetMetrics := func() {
		p.ResetMetrics()
		logger.Info("Waiting for next message")
	}

	logger.Info("Listening for messages", "queue", queue.RankQueue)
	if err := queue.Listen(ctx, ch, queue.RankQueue, handler.ProcessRankMessage, resetMetrics); err != nil {
		logger.Fatal("Consumer stopped", "err", err)
	}
	logger.Info("Shutdown signal received, exiting...")
}
