package orderitem

import (
	"time"

	"github.com/corray333/food-delivery/internal/service/models/currency"
)

// OrderItem is one menu item plus quantity within an order. The price is
// snapshotted from the menu at order-creation time and never recomputed.
type OrderItem struct {
	ID            int64             `json:"id"`
	OrderID       int64             `json:"orderId"`
	MenuItemID    int64             `json:"menuItemId"`
	Quantity      int               `json:"quantity"`
	ItemName      string            `json:"itemName"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
