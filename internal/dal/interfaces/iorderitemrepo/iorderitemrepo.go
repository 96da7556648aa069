package iorderitemrepo

import (
	"context"

	"github.com/corray333/food-delivery/internal/service/models/orderitem"
)

// IOrderItemRepository is an interface for the order item postgres repository.
type IOrderItemRepository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	Query(ctx context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error)

	// DeleteByOrderID removes all line items of an order. Used by the
	// placement compensation path.
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
