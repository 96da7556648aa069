package events

import (
	"context"
	"encoding/json"

	"github.com/corray333/food-delivery/internal/dal/rabbitmq"
	"github.com/corray333/food-delivery/internal/service/models/event"
	"github.com/streadway/amqp"
)

// EventsRabbitMQRepository publishes order events to the order events
// queue.
type EventsRabbitMQRepository struct {
	client *rabbitmq.Client
	queue  amqp.Queue
}

func NewEventsRabbitMQRepository(client *rabbitmq.Client) *EventsRabbitMQRepository {
	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       "food.order.events",
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &EventsRabbitMQRepository{
		client: client,
		queue:  queue,
	}
}

// QueueName returns the name of the order events queue.
func (r *EventsRabbitMQRepository) QueueName() string {
	return r.queue.Name
}

// Publish sends a single order event.
func (r *EventsRabbitMQRepository) Publish(ctx context.Context, ev event.OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return r.client.Channel().Publish(
		"",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}
