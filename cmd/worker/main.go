package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/lecturemap/internal/bootstrap"
	"github.com/OFFIS-RIT/lecturemap/internal/queue"
	"github.com/OFFIS-RIT/lecturemap/internal/storage"
	"github.com/OFFIS-RIT/lecturemap/internal/timing"
	"github.com/OFFIS-RIT/lecturemap/internal/util"
	"github.com/OFFIS-RIT/lecturemap/pkg/ai"
	"github.com/OFFIS-RIT/lecturemap/pkg/loader/io"
	"github.com/OFFIS-RIT/lecturemap/pkg/loader/s3"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const maxRetries = 10

func main() {
	util.LoadEnv()
	bootstrap.InitLogger("worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient, err := bootstrap.NewAIClient()
	if err != nil {
		logger.Fatal("Could not create AI client", "err", err)
	}

	localBuilder, err := bootstrap.NewGraphClient(aiClient, io.NewIOFileLoader())
	if err != nil {
		logger.Fatal("Invalid graph configuration", "err", err)
	}
	builders := map[string]queue.GraphBuilder{queue.StorageLocal: localBuilder}

	var afterBuild func(context.Context, queue.BuildJobMsg) error
	if storage.Enabled() {
		client, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("Could not create S3 client", "err", err)
		}
		s3Builder, err := bootstrap.NewGraphClient(aiClient, s3.NewS3FileLoaderWithClient(storage.Bucket(), client))
		if err != nil {
			logger.Fatal("Invalid graph configuration", "err", err)
		}
		builders[queue.StorageS3] = s3Builder

		if util.GetEnvBool("DELETE_UPLOADS", false) {
			afterBuild = func(ctx context.Context, job queue.BuildJobMsg) error {
				if job.Storage != queue.StorageS3 {
					return os.Remove(job.Source)
				}
				return storage.DeleteFile(ctx, client, job.Source)
			}
		}
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.BuildQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	processor := &queue.BuildProcessor{
		Builders:   builders,
		Publisher:  queue.ChannelPublisher{Channel: ch},
		AfterBuild: afterBuild,
	}

	// prefetch=1 so a worker holds one build at a time
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.BuildQueue,
		queue.BuildQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.BuildQueue, "err", err)
	}

	buildTimeout := bootstrap.BuildTimeout()
	logger.Info("Listening for messages", "queue", queue.BuildQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.BuildQueue)
				return
			}
			handleMessage(ctx, processor, aiClient, consumerCh, msg, buildTimeout)
		}
	}
}

func handleMessage(
	ctx context.Context,
	processor *queue.BuildProcessor,
	aiClient ai.GraphAIClient,
	ch *amqp.Channel,
	msg amqp.Delivery,
	timeout time.Duration,
) {
	startTime := time.Now()
	logger.Info("Received message", "queue", queue.BuildQueue)

	buildCtx, cancel := context.WithTimeout(ctx, timeout)
	processingErr := processor.ProcessBuildMessage(buildCtx, msg.Body)
	cancel()

	// If there was an error send to retry or dead-letter, otherwise ack the message
	if processingErr != nil {
		logger.Error("Error processing message", "queue", queue.BuildQueue, "err", processingErr)
		handleProcessingError(ch, msg, queue.BuildQueue, queue.IsPermanent(processingErr))
	} else {
		if err := msg.Ack(false); err != nil {
			logger.Error("Failed to ack message", "err", err)
		}
		logger.Info("Message processed successfully", "queue", queue.BuildQueue)
	}

	metrics := aiClient.GetMetrics()
	logger.Info(
		"AI Metrics",
		"requests", metrics.Requests,
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
		"duration", timing.FormatDuration(time.Duration(metrics.DurationMs)*time.Millisecond),
	)
	logger.Info("Processing time", "duration", timing.FormatDuration(time.Since(startTime)))
	logger.Info("Waiting for next message")
	aiClient.ResetMetrics()
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string, permanent bool) {
	retries := queue.Retries(msg.Headers)

	// permanent failures and exhausted retries go to the dead-letter queue
	if permanent || retries >= maxRetries {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName, "retries", retries, "permanent", permanent)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: msg.ContentType,
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			_ = msg.Nack(false, true)
			return
		}
		_ = msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}
