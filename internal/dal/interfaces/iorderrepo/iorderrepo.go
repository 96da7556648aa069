package iorderrepo

import (
	"context"
	"time"

	"github.com/corray333/food-delivery/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	GetByID(ctx context.Context, id int64) (order.Order, error)

	// UpdateStatus applies the conditional status write. It fails with a
	// Conflict error when the stored version no longer matches, and
	// NotFound when the order does not exist.
	UpdateStatus(ctx context.Context, upd order.StatusUpdate) (order.Order, error)

	// UpdateDeliveryTime rewrites the target delivery time under the same
	// version check as UpdateStatus.
	UpdateDeliveryTime(ctx context.Context, id, fromVersion int64, deliveryTime time.Time) (order.Order, error)

	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	Count(ctx context.Context, filter *order.QueryOrdersModel) (int64, error)
}
