package event

import (
	"time"

	"github.com/corray333/food-delivery/internal/service/models/order"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published to the order events queue after every order
// mutation.
type OrderEvent struct {
	Type         string       `json:"type"`
	OrderID      int64        `json:"orderId"`
	CustomerID   int64        `json:"customerId"`
	RestaurantID int64        `json:"restaurantId"`
	Status       order.Status `json:"status"`
	OccurredAt   time.Time    `json:"occurredAt"`
}
