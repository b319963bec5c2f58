package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"

	"github.com/rabbitmq/amqp091-go"
)

// ApplyGraphEvent mirrors a worker event into the store. Events of other
// jobs than the one the store is tracking are ignored, so a late event of
// a superseded upload cannot overwrite a newer graph.
func ApplyGraphEvent(s store.GraphStore, event GraphEventMsg) {
	current := s.Status()
	if current.JobID != "" && event.JobID != current.JobID {
		logger.Debug("[Queue] Ignoring event of superseded job", "job_id", event.JobID, "current", current.JobID)
		return
	}

	status := store.BuildStatus{
		JobID:    event.JobID,
		Source:   event.Source,
		State:    event.State,
		Stage:    string(event.Stage),
		Error:    event.Error,
		Concepts: current.Concepts,
		Edges:    current.Edges,
	}
	if status.Source == "" {
		status.Source = current.Source
	}

	if event.State == store.BuildSucceeded && event.Graph != nil {
		s.Publish(*event.Graph)
		status.Concepts = len(event.Graph.Concepts)
		status.Edges = len(event.Graph.Edges)
	}
	s.SetStatus(status)
}

// SubscribeGraphEvents binds a private queue to all graph topics and
// applies every event to s until ctx ends or the channel closes.
func SubscribeGraphEvents(ctx context.Context, ch *amqp091.Channel, s store.GraphStore) error {
	if err := declareExchange(ch); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(
		"",
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare failed: %w", err)
	}
	if err := ch.QueueBind(q.Name, "graph.*", Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind failed: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	go func() {
		for msg := range msgs {
			var event GraphEventMsg
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				logger.Warn("[Queue] Dropping malformed graph event", "topic", msg.RoutingKey, "err", err)
				continue
			}
			logger.Debug("[Queue] Graph event", "topic", msg.RoutingKey, "job_id", event.JobID, "state", event.State)
			ApplyGraphEvent(s, event)
		}
		logger.Info("[Queue] Graph event subscription closed")
	}()
	return nil
}
