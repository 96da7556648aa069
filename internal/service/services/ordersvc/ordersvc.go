package ordersvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/food-delivery/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/food-delivery/internal/dal/postgres"
	"github.com/corray333/food-delivery/internal/dal/uow"
	"github.com/corray333/food-delivery/internal/service/models/currency"
	"github.com/corray333/food-delivery/internal/service/models/event"
	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/orderitem"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/sethvargo/go-retry"
)

// OrderService owns order creation, status transitions and order queries.
type OrderService struct {
	pgClient *postgres.Client
	events   eventPublisher
	newUOW   func() unitOfWork
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	CatalogRepository() icatalogrepo.ICatalogRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

type eventPublisher interface {
	Publish(ctx context.Context, ev event.OrderEvent) error
	QueueName() string
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithEventPublisher sets the order event publisher.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventPublisher(events eventPublisher) option {
	return func(s *OrderService) {
		s.events = events
	}
}

// LineRequest is one requested menu item within a placement request.
type LineRequest struct {
	MenuItemID int64
	Quantity   int
}

// PlaceOrderRequest carries everything needed to place an order.
type PlaceOrderRequest struct {
	CustomerID   int64
	RestaurantID int64
	Lines        []LineRequest
	DeliveryTime *time.Time
}

// itemInsertAttempts bounds the second phase of the two-phase write
// before compensation kicks in.
const itemInsertAttempts = 3

// PlaceOrder validates the request against the catalog, snapshots menu
// prices into line items, and persists the order followed by its items.
// The order row is written first so items always reference an existing
// order; if the item phase keeps failing, the order is cancelled and any
// inserted items removed.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (order.Order, error) {
	if len(req.Lines) == 0 {
		return order.Order{}, errs.InvalidInput("order must contain at least one item")
	}

	for _, line := range req.Lines {
		if line.Quantity < 1 {
			return order.Order{}, errs.InvalidInput("quantity must be at least 1 for menu item %d", line.MenuItemID)
		}
	}

	work := s.newUOW()
	catalog := work.CatalogRepository()

	exists, err := catalog.UserExists(ctx, req.CustomerID)
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}
	if !exists {
		return order.Order{}, errs.NotFound("customer %d not found", req.CustomerID)
	}

	exists, err = catalog.RestaurantExists(ctx, req.RestaurantID)
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}
	if !exists {
		return order.Order{}, errs.NotFound("restaurant %d not found", req.RestaurantID)
	}

	now := time.Now()

	var totalCents int64
	items := make([]orderitem.OrderItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		menuItem, err := catalog.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			return order.Order{}, asStoreFailure(err)
		}

		if menuItem.RestaurantID != req.RestaurantID {
			return order.Order{}, errs.InvalidInput("menu item %d does not belong to restaurant %d", line.MenuItemID, req.RestaurantID)
		}

		if !menuItem.Available {
			return order.Order{}, errs.InvalidInput("menu item %d is not available", line.MenuItemID)
		}

		totalCents += menuItem.PriceCents * int64(line.Quantity)
		items = append(items, orderitem.OrderItem{
			MenuItemID:    menuItem.ID,
			Quantity:      line.Quantity,
			ItemName:      menuItem.Name,
			PriceCents:    menuItem.PriceCents,
			PriceCurrency: menuItem.PriceCurrency,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	inserted, err := work.OrderRepository().Insert(ctx, order.Order{
		CustomerID:         req.CustomerID,
		RestaurantID:       req.RestaurantID,
		Status:             order.StatusPending,
		TotalPriceCents:    totalCents,
		TotalPriceCurrency: currency.CurrencyUSD,
		DeliveryTime:       req.DeliveryTime,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}

	for i := range items {
		items[i].OrderID = inserted.ID
	}

	var insertedItems []orderitem.OrderItem
	backoff := retry.WithMaxRetries(itemInsertAttempts-1, retry.NewConstant(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var insErr error
		insertedItems, insErr = work.OrderItemRepository().BulkInsert(ctx, items)
		if insErr != nil {
			return retry.RetryableError(insErr)
		}

		return nil
	})
	if err != nil {
		s.compensatePlacement(ctx, work, inserted)

		return order.Order{}, errs.Unavailable(err, "failed to persist order items for order %d", inserted.ID)
	}

	inserted.OrderItems = insertedItems

	s.publishEvent(ctx, work, event.OrderEvent{
		Type:         event.TypeOrderCreated,
		OrderID:      inserted.ID,
		CustomerID:   inserted.CustomerID,
		RestaurantID: inserted.RestaurantID,
		Status:       inserted.Status,
		OccurredAt:   now,
	})

	return inserted, nil
}

// compensatePlacement removes orphan line items and parks the order in
// Cancelled after the item phase failed for good. Both writes run in one
// transaction so a half-compensated order is never observable.
func (s *OrderService) compensatePlacement(ctx context.Context, work unitOfWork, o order.Order) {
	if err := work.Begin(ctx); err != nil {
		slog.Error("Failed to begin placement compensation", "order_id", o.ID, "error", err)

		return
	}

	if err := work.OrderItemRepository().DeleteByOrderID(ctx, o.ID); err != nil {
		slog.Error("Failed to delete order items during placement compensation", "order_id", o.ID, "error", err)
		_ = work.Rollback(ctx)

		return
	}

	_, err := work.OrderRepository().UpdateStatus(ctx, order.StatusUpdate{
		OrderID:     o.ID,
		FromVersion: o.Version,
		Status:      order.StatusCancelled,
	})
	if err != nil {
		slog.Error("Failed to cancel order during placement compensation", "order_id", o.ID, "error", err)
		_ = work.Rollback(ctx)

		return
	}

	if err := work.Commit(ctx); err != nil {
		slog.Error("Failed to commit placement compensation", "order_id", o.ID, "error", err)
	}
}

// TransitionStatus moves an order along the lifecycle table, enforcing
// role permissions and optimistic concurrency. Requesting the current
// status is a no-op returning the order unchanged.
func (s *OrderService) TransitionStatus(ctx context.Context, orderID int64, to order.Status, actor role.Actor) (order.Order, error) {
	work := s.newUOW()

	current, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}

	if current.Status == to {
		return s.attachItems(ctx, work, current)
	}

	if !current.Status.CanTransitionTo(to) {
		return order.Order{}, errs.InvalidTransition("cannot transition order %d from %s to %s", orderID, current.Status, to)
	}

	if !to.AllowedFor(actor.Role) {
		return order.Order{}, errs.Forbidden("role %s may not set status %s", actor.Role, to)
	}

	if to == order.StatusCancelled && actor.Role == role.RoleCustomer {
		if current.CustomerID != actor.UserID {
			return order.Order{}, errs.Forbidden("customer %d may not cancel order %d", actor.UserID, orderID)
		}
		if current.Status != order.StatusPending && current.Status != order.StatusAccepted {
			return order.Order{}, errs.Forbidden("customer may cancel only pending or accepted orders")
		}
	}

	upd := order.StatusUpdate{
		OrderID:     orderID,
		FromVersion: current.Version,
		Status:      to,
	}

	if to == order.StatusAccepted && actor.Role == role.RoleDelivery {
		personnelID := actor.UserID
		upd.DeliveryPersonnelID = &personnelID
	}

	if to == order.StatusDelivered && current.DeliveryTime == nil {
		deliveredAt := time.Now()
		upd.DeliveryTime = &deliveredAt
	}

	updated, err := work.OrderRepository().UpdateStatus(ctx, upd)
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}

	s.publishEvent(ctx, work, event.OrderEvent{
		Type:         event.TypeOrderStatusChanged,
		OrderID:      updated.ID,
		CustomerID:   updated.CustomerID,
		RestaurantID: updated.RestaurantID,
		Status:       updated.Status,
		OccurredAt:   time.Now(),
	})

	return s.attachItems(ctx, work, updated)
}

// CancelOrder is the Cancelled specialization of TransitionStatus.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64, actor role.Actor) (order.Order, error) {
	return s.TransitionStatus(ctx, orderID, order.StatusCancelled, actor)
}

// RescheduleOrder rewrites the target delivery time. Permitted only to
// the customer who owns the order or an admin, and only while the order
// is still Pending or Accepted. The status itself does not change.
func (s *OrderService) RescheduleOrder(ctx context.Context, orderID int64, newTime time.Time, actor role.Actor) (order.Order, error) {
	if actor.Role != role.RoleCustomer && actor.Role != role.RoleAdmin {
		return order.Order{}, errs.Forbidden("role %s may not reschedule orders", actor.Role)
	}

	work := s.newUOW()

	current, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}

	if actor.Role == role.RoleCustomer && current.CustomerID != actor.UserID {
		return order.Order{}, errs.Forbidden("customer %d may not reschedule order %d", actor.UserID, orderID)
	}

	if current.Status != order.StatusPending && current.Status != order.StatusAccepted {
		return order.Order{}, errs.InvalidTransition("cannot reschedule order %d in status %s", orderID, current.Status)
	}

	updated, err := work.OrderRepository().UpdateDeliveryTime(ctx, orderID, current.Version, newTime)
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}

	return s.attachItems(ctx, work, updated)
}

// GetOrder retrieves a single order with its line items.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}

	return s.attachItems(ctx, work, o)
}

// DefaultPageSize bounds unpaginated list requests.
const (
	DefaultPageSize = 50
	maxPageSize     = 200
)

// ListOrdersQuery is the caller-facing order list filter. Page is
// 1-indexed.
type ListOrdersQuery struct {
	RestaurantIds []int64
	CustomerIds   []int64
	Statuses      []order.Status
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Page          int
	PageSize      int
}

// ListOrders retrieves a page of orders with items plus the total match
// count for the filter.
func (s *OrderService) ListOrders(ctx context.Context, q ListOrdersQuery) ([]order.Order, int64, error) {
	if q.CreatedFrom != nil && q.CreatedTo != nil && q.CreatedFrom.After(*q.CreatedTo) {
		return nil, 0, errs.InvalidInput("date range start is after its end")
	}

	if q.Page < 1 {
		q.Page = 1
	}

	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	filter := &order.QueryOrdersModel{
		RestaurantIds: q.RestaurantIds,
		CustomerIds:   q.CustomerIds,
		Statuses:      q.Statuses,
		CreatedFrom:   q.CreatedFrom,
		CreatedTo:     q.CreatedTo,
		Limit:         q.PageSize,
		Offset:        (q.Page - 1) * q.PageSize,
	}

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, 0, asStoreFailure(err)
	}

	total, err := work.OrderRepository().Count(ctx, filter)
	if err != nil {
		return nil, 0, asStoreFailure(err)
	}

	if len(orders) == 0 {
		return []order.Order{}, total, nil
	}

	itemQuery := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		itemQuery.OrderIds = append(itemQuery.OrderIds, o.ID)
	}

	orderItems, err := work.OrderItemRepository().Query(ctx, itemQuery)
	if err != nil {
		return nil, 0, asStoreFailure(err)
	}

	for i := range orders {
		for _, item := range orderItems {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, total, nil
}

func (s *OrderService) attachItems(ctx context.Context, work unitOfWork, o order.Order) (order.Order, error) {
	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: []int64{o.ID},
	})
	if err != nil {
		return order.Order{}, asStoreFailure(err)
	}

	o.OrderItems = items

	return o, nil
}

// publishEvent sends an order event; failures park the event in the
// outbox so the worker can retry later.
func (s *OrderService) publishEvent(ctx context.Context, work unitOfWork, ev event.OrderEvent) {
	if s.events == nil {
		return
	}

	pubErr := s.events.Publish(ctx, ev)
	if pubErr == nil {
		return
	}

	slog.Warn("Failed to publish order event, parking in outbox", "order_id", ev.OrderID, "type", ev.Type, "error", pubErr)

	payload, err := marshalEvent(ev)
	if err != nil {
		slog.Error("Failed to marshal order event for outbox", "order_id", ev.OrderID, "error", err)

		return
	}

	now := time.Now()
	if err := work.OutboxRepository().Insert(ctx, outboxMessage(s.events.QueueName(), payload, now)); err != nil {
		slog.Error("Failed to insert order event into outbox", "order_id", ev.OrderID, "error", err)
	}
}

// asStoreFailure keeps typed failures intact and folds raw store errors
// into Unavailable so callers never see the underlying driver error.
func asStoreFailure(err error) error {
	if errs.KindOf(err) != errs.KindUnknown {
		return err
	}

	return errs.Unavailable(err, "storage failure")
}
