package ordersvc

import (
	"encoding/json"
	"time"

	"github.com/corray333/food-delivery/internal/service/models/event"
	"github.com/corray333/food-delivery/internal/service/models/outbox"
)

const outboxMaxRetries = 10

func marshalEvent(ev event.OrderEvent) ([]byte, error) {
	return json.Marshal(ev)
}

func outboxMessage(queueName string, payload []byte, now time.Time) outbox.OutboxMessage {
	return outbox.OutboxMessage{
		QueueName:   queueName,
		RoutingKey:  queueName,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  outboxMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}
}
