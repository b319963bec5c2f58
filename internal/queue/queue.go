package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/lecturemap/internal/util"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// BuildQueue carries BuildJobMsg payloads to the worker.
	BuildQueue = "build_queue"

	// Exchange is the topic exchange graph events are published on.
	Exchange = "pubsub_exchange"

	TopicGraphStatus = "graph.status"
	TopicGraphBuilt  = "graph.built"
	TopicGraphFailed = "graph.failed"

	retryDelay = 10 * time.Second
)

func Init() *amqp091.Connection {
	user := util.GetEnvString("RABBITMQ_USER", "guest")
	pass := util.GetEnvString("RABBITMQ_PASSWORD", "guest")
	host := util.GetEnvString("RABBITMQ_HOST", "localhost")
	port := util.GetEnvString("RABBITMQ_PORT", "5672")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

func declareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		Exchange,
		"topic",
		false,
		true,
		false,
		false,
		nil,
	)
}

// SetupQueues declares the event exchange and, for every name, a durable
// work queue plus its _dlq and _retry companions. Messages published to
// the retry queue return to the work queue after retryDelay.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	if err := declareExchange(ch); err != nil {
		return fmt.Errorf("exchange declare failed: %w", err)
	}

	for _, name := range queueNames {
		declarations := []struct {
			name string
			args amqp091.Table
		}{
			{name: name},
			{name: name + "_dlq"},
			{name: name + "_retry", args: amqp091.Table{
				"x-message-ttl":             int32(retryDelay / time.Millisecond),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			}},
		}
		for _, d := range declarations {
			_, err := ch.QueueDeclare(
				d.name,
				true,  // durable
				false, // autoDelete
				false, // exclusive
				false, // noWait
				d.args,
			)
			if err != nil {
				return fmt.Errorf("queue declare %s failed: %w", d.name, err)
			}
		}
	}

	return nil
}

func PublishFIFO(ctx context.Context, ch *amqp091.Channel, queueName string, data []byte) error {
	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		q.Name,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         data,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

func PublishTopic(ctx context.Context, ch *amqp091.Channel, topic string, data []byte) error {
	if err := declareExchange(ch); err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		Exchange,
		topic,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         data,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

// ChannelPublisher publishes events on an AMQP channel.
type ChannelPublisher struct {
	Channel *amqp091.Channel
}

func (p ChannelPublisher) PublishTopic(ctx context.Context, topic string, data []byte) error {
	return PublishTopic(ctx, p.Channel, topic, data)
}

func (p ChannelPublisher) PublishJob(ctx context.Context, data []byte) error {
	return PublishFIFO(ctx, p.Channel, BuildQueue, data)
}

// Retries reads the retry counter the worker stores in message headers.
func Retries(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
