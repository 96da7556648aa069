package order

import (
	"time"

	"github.com/corray333/food-delivery/internal/service/models/currency"
	"github.com/corray333/food-delivery/internal/service/models/orderitem"
)

// Order is a customer's purchase request against one restaurant, tracked
// through the status lifecycle.
type Order struct {
	ID                  int64                 `json:"id"`
	CustomerID          int64                 `json:"customerId"`
	RestaurantID        int64                 `json:"restaurantId"`
	Status              Status                `json:"status"`
	TotalPriceCents     int64                 `json:"totalPriceCents"`
	TotalPriceCurrency  currency.Currency     `json:"totalPriceCurrency"`
	DeliveryPersonnelID *int64                `json:"deliveryPersonnelId,omitempty"`
	DeliveryTime        *time.Time            `json:"deliveryTime,omitempty"`
	Version             int64                 `json:"-"`
	CreatedAt           time.Time             `json:"createdAt"`
	UpdatedAt           time.Time             `json:"updatedAt"`
	OrderItems          []orderitem.OrderItem `json:"orderItems"`
}

// StatusUpdate is a conditional write of the order status. The update
// applies only while the stored version still equals FromVersion.
type StatusUpdate struct {
	OrderID             int64
	FromVersion         int64
	Status              Status
	DeliveryPersonnelID *int64
	DeliveryTime        *time.Time
}
