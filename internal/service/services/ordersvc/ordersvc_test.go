package ordersvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/food-delivery/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/food-delivery/internal/service/models/event"
	"github.com/corray333/food-delivery/internal/service/models/menuitem"
	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/orderitem"
	"github.com/corray333/food-delivery/internal/service/models/outbox"
	"github.com/corray333/food-delivery/internal/service/models/restaurant"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[int64]order.Order
	nextID    int64
	onGetByID func(id int64)
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[int64]order.Order{}, nextID: 1}
}

func (r *memOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	o.Version = 1
	r.orders[o.ID] = o

	return o, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id int64) (order.Order, error) {
	r.mu.Lock()
	o, ok := r.orders[id]
	r.mu.Unlock()
	if !ok {
		return order.Order{}, errs.NotFound("order %d not found", id)
	}

	if r.onGetByID != nil {
		r.onGetByID(id)
	}

	return o, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, upd order.StatusUpdate) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[upd.OrderID]
	if !ok {
		return order.Order{}, errs.NotFound("order %d not found", upd.OrderID)
	}
	if o.Version != upd.FromVersion {
		return order.Order{}, errs.Conflict("order %d was modified concurrently", upd.OrderID)
	}

	o.Status = upd.Status
	o.Version++
	if upd.DeliveryPersonnelID != nil {
		o.DeliveryPersonnelID = upd.DeliveryPersonnelID
	}
	if upd.DeliveryTime != nil {
		o.DeliveryTime = upd.DeliveryTime
	}
	o.UpdatedAt = time.Now()
	r.orders[upd.OrderID] = o

	return o, nil
}

func (r *memOrderRepo) UpdateDeliveryTime(_ context.Context, id, fromVersion int64, deliveryTime time.Time) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, errs.NotFound("order %d not found", id)
	}
	if o.Version != fromVersion {
		return order.Order{}, errs.Conflict("order %d was modified concurrently", id)
	}

	o.DeliveryTime = &deliveryTime
	o.Version++
	o.UpdatedAt = time.Now()
	r.orders[id] = o

	return o, nil
}

func (r *memOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := r.match(filter)

	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if filter.Limit == 0 || end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], nil
}

func (r *memOrderRepo) Count(_ context.Context, filter *order.QueryOrdersModel) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.match(filter))), nil
}

func (r *memOrderRepo) match(filter *order.QueryOrdersModel) []order.Order {
	var matched []order.Order
	for id := int64(1); id < r.nextID; id++ {
		o, ok := r.orders[id]
		if !ok {
			continue
		}
		if len(filter.CustomerIds) > 0 && !containsInt64(filter.CustomerIds, o.CustomerID) {
			continue
		}
		if len(filter.RestaurantIds) > 0 && !containsInt64(filter.RestaurantIds, o.RestaurantID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		matched = append(matched, o)
	}

	return matched
}

func containsInt64(xs []int64, x int64) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsStatus(xs []order.Status, x order.Status) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

type memItemRepo struct {
	mu        sync.Mutex
	items     map[int64][]orderitem.OrderItem
	nextID    int64
	failTimes int
	deleted   []int64
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: map[int64][]orderitem.OrderItem{}, nextID: 1}
}

func (r *memItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failTimes > 0 {
		r.failTimes--
		return nil, errors.New("connection reset")
	}

	out := make([]orderitem.OrderItem, 0, len(items))
	for _, item := range items {
		item.ID = r.nextID
		r.nextID++
		r.items[item.OrderID] = append(r.items[item.OrderID], item)
		out = append(out, item)
	}

	return out, nil
}

func (r *memItemRepo) Query(_ context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []orderitem.OrderItem
	for _, orderID := range filter.OrderIds {
		out = append(out, r.items[orderID]...)
	}

	return out, nil
}

func (r *memItemRepo) DeleteByOrderID(_ context.Context, orderID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, orderID)
	r.deleted = append(r.deleted, orderID)

	return nil
}

type memCatalogRepo struct {
	users       map[int64]bool
	restaurants map[int64]restaurant.Restaurant
	menu        map[int64]menuitem.MenuItem
}

func (r *memCatalogRepo) UserExists(_ context.Context, id int64) (bool, error) {
	return r.users[id], nil
}

func (r *memCatalogRepo) SetCourierAvailability(_ context.Context, _ int64, _ bool) error {
	return nil
}

func (r *memCatalogRepo) RestaurantExists(_ context.Context, id int64) (bool, error) {
	_, ok := r.restaurants[id]
	return ok, nil
}

func (r *memCatalogRepo) GetMenuItem(_ context.Context, id int64) (menuitem.MenuItem, error) {
	item, ok := r.menu[id]
	if !ok {
		return menuitem.MenuItem{}, errs.NotFound("menu item %d not found", id)
	}
	return item, nil
}

func (r *memCatalogRepo) ListMenu(_ context.Context, restaurantID int64) ([]menuitem.MenuItem, error) {
	var out []menuitem.MenuItem
	for _, item := range r.menu {
		if item.RestaurantID == restaurantID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memCatalogRepo) InsertMenuItem(_ context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error) {
	return item, nil
}

func (r *memCatalogRepo) UpdateMenuItem(_ context.Context, _ menuitem.UpdateMenuItemModel) (menuitem.MenuItem, error) {
	return menuitem.MenuItem{}, nil
}

func (r *memCatalogRepo) DeleteMenuItem(_ context.Context, _ int64) error {
	return nil
}

func (r *memCatalogRepo) GetRestaurant(_ context.Context, id int64) (restaurant.Restaurant, error) {
	rest, ok := r.restaurants[id]
	if !ok {
		return restaurant.Restaurant{}, errs.NotFound("restaurant %d not found", id)
	}
	return rest, nil
}

func (r *memCatalogRepo) ListRestaurantsByOwner(_ context.Context, _ int64) ([]restaurant.Restaurant, error) {
	return nil, nil
}

func (r *memCatalogRepo) InsertRestaurant(_ context.Context, rest restaurant.Restaurant) (restaurant.Restaurant, error) {
	return rest, nil
}

func (r *memCatalogRepo) UpdateRestaurant(_ context.Context, _ restaurant.UpdateRestaurantModel) (restaurant.Restaurant, error) {
	return restaurant.Restaurant{}, nil
}

type memOutboxRepo struct {
	mu       sync.Mutex
	inserted []outbox.OutboxMessage
}

func (r *memOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted = append(r.inserted, msg)
	return nil
}

func (r *memOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.OutboxMessage, error) {
	return nil, nil
}

func (r *memOutboxRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

func (r *memOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

type memUOW struct {
	orderRepo   *memOrderRepo
	itemRepo    *memItemRepo
	catalogRepo *memCatalogRepo
	outboxRepo  *memOutboxRepo

	began      bool
	committed  bool
	rolledBack bool
}

func (u *memUOW) Begin(context.Context) error {
	u.began = true
	return nil
}

func (u *memUOW) Commit(context.Context) error {
	u.committed = true
	return nil
}

func (u *memUOW) Rollback(context.Context) error {
	u.rolledBack = true
	return nil
}

func (u *memUOW) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *memUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.itemRepo
}

func (u *memUOW) CatalogRepository() icatalogrepo.ICatalogRepository {
	return u.catalogRepo
}

func (u *memUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

type memPublisher struct {
	mu        sync.Mutex
	published []event.OrderEvent
	err       error
}

func (p *memPublisher) Publish(_ context.Context, ev event.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, ev)
	return nil
}

func (p *memPublisher) QueueName() string {
	return "food.order.events"
}

func newTestService() (*OrderService, *memUOW, *memPublisher) {
	work := &memUOW{
		orderRepo: newMemOrderRepo(),
		itemRepo:  newMemItemRepo(),
		catalogRepo: &memCatalogRepo{
			users: map[int64]bool{1: true, 2: true, 7: true},
			restaurants: map[int64]restaurant.Restaurant{
				10: {ID: 10, OwnerID: 5, Name: "Tony's", Address: "1 Main St"},
				11: {ID: 11, OwnerID: 6, Name: "Sakura", Address: "2 Main St"},
			},
			menu: map[int64]menuitem.MenuItem{
				100: {ID: 100, RestaurantID: 10, Name: "Margherita", PriceCents: 1000, PriceCurrency: "USD", Available: true},
				101: {ID: 101, RestaurantID: 10, Name: "Tiramisu", PriceCents: 500, PriceCurrency: "USD", Available: true},
				102: {ID: 102, RestaurantID: 10, Name: "Calzone", PriceCents: 1200, PriceCurrency: "USD", Available: false},
				200: {ID: 200, RestaurantID: 11, Name: "Ramen", PriceCents: 900, PriceCurrency: "USD", Available: true},
			},
		},
		outboxRepo: &memOutboxRepo{},
	}

	pub := &memPublisher{}
	svc := &OrderService{
		events: pub,
		newUOW: func() unitOfWork { return work },
	}

	return svc, work, pub
}

func placeTestOrder(t *testing.T, svc *OrderService) order.Order {
	t.Helper()

	placed, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID:   1,
		RestaurantID: 10,
		Lines: []LineRequest{
			{MenuItemID: 100, Quantity: 2},
			{MenuItemID: 101, Quantity: 3},
		},
	})
	require.NoError(t, err)

	return placed
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	svc, _, pub := newTestService()

	placed := placeTestOrder(t, svc)

	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, int64(2*1000+3*500), placed.TotalPriceCents)
	require.Len(t, placed.OrderItems, 2)
	assert.Equal(t, "Margherita", placed.OrderItems[0].ItemName)
	assert.Equal(t, int64(1000), placed.OrderItems[0].PriceCents)
	assert.Equal(t, 3, placed.OrderItems[1].Quantity)

	require.Len(t, pub.published, 1)
	assert.Equal(t, event.TypeOrderCreated, pub.published[0].Type)
	assert.Equal(t, placed.ID, pub.published[0].OrderID)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  PlaceOrderRequest
		kind errs.Kind
	}{
		{
			name: "no items",
			req:  PlaceOrderRequest{CustomerID: 1, RestaurantID: 10},
			kind: errs.KindInvalidInput,
		},
		{
			name: "zero quantity",
			req: PlaceOrderRequest{CustomerID: 1, RestaurantID: 10,
				Lines: []LineRequest{{MenuItemID: 100, Quantity: 0}}},
			kind: errs.KindInvalidInput,
		},
		{
			name: "unknown customer",
			req: PlaceOrderRequest{CustomerID: 999, RestaurantID: 10,
				Lines: []LineRequest{{MenuItemID: 100, Quantity: 1}}},
			kind: errs.KindNotFound,
		},
		{
			name: "unknown restaurant",
			req: PlaceOrderRequest{CustomerID: 1, RestaurantID: 999,
				Lines: []LineRequest{{MenuItemID: 100, Quantity: 1}}},
			kind: errs.KindNotFound,
		},
		{
			name: "item from another restaurant",
			req: PlaceOrderRequest{CustomerID: 1, RestaurantID: 10,
				Lines: []LineRequest{{MenuItemID: 200, Quantity: 1}}},
			kind: errs.KindInvalidInput,
		},
		{
			name: "unavailable item",
			req: PlaceOrderRequest{CustomerID: 1, RestaurantID: 10,
				Lines: []LineRequest{{MenuItemID: 102, Quantity: 1}}},
			kind: errs.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestPlaceOrderRetriesItemInsert(t *testing.T) {
	svc, work, _ := newTestService()
	work.itemRepo.failTimes = 2

	placed, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID:   1,
		RestaurantID: 10,
		Lines:        []LineRequest{{MenuItemID: 100, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, placed.OrderItems, 1)
}

func TestPlaceOrderCompensatesOnItemFailure(t *testing.T) {
	svc, work, _ := newTestService()
	work.itemRepo.failTimes = itemInsertAttempts

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID:   1,
		RestaurantID: 10,
		Lines:        []LineRequest{{MenuItemID: 100, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))

	stored, err := work.orderRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, stored.Status)
	assert.Equal(t, []int64{1}, work.itemRepo.deleted)
	assert.True(t, work.began, "compensation runs in a transaction")
	assert.True(t, work.committed)
	assert.False(t, work.rolledBack)
}

func TestTransitionStatusLifecycle(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()
	admin := role.Actor{UserID: 7, Role: role.RoleAdmin}

	placed := placeTestOrder(t, svc)

	for _, next := range []order.Status{
		order.StatusAccepted,
		order.StatusPreparing,
	} {
		updated, err := svc.TransitionStatus(ctx, placed.ID, next, admin)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	courier := role.Actor{UserID: 2, Role: role.RoleDelivery}
	updated, err := svc.TransitionStatus(ctx, placed.ID, order.StatusOutForDelivery, courier)
	require.NoError(t, err)
	assert.Equal(t, order.StatusOutForDelivery, updated.Status)

	updated, err = svc.TransitionStatus(ctx, placed.ID, order.StatusDelivered, courier)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveryTime)

	// one creation event plus four status changes
	assert.Len(t, pub.published, 5)
}

func TestTransitionStatusRejectsIllegalEdges(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	admin := role.Actor{UserID: 7, Role: role.RoleAdmin}

	placed := placeTestOrder(t, svc)

	_, err := svc.TransitionStatus(ctx, placed.ID, order.StatusOutForDelivery, admin)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidTransition, errs.KindOf(err))

	_, err = svc.TransitionStatus(ctx, placed.ID, order.StatusDelivered, admin)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidTransition, errs.KindOf(err))

	_, err = svc.CancelOrder(ctx, placed.ID, admin)
	require.NoError(t, err)

	// terminal state rejects further movement
	_, err = svc.TransitionStatus(ctx, placed.ID, order.StatusAccepted, admin)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidTransition, errs.KindOf(err))
}

func TestTransitionStatusSameStatusIsNoOp(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()
	admin := role.Actor{UserID: 7, Role: role.RoleAdmin}

	placed := placeTestOrder(t, svc)

	unchanged, err := svc.TransitionStatus(ctx, placed.ID, order.StatusPending, admin)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, unchanged.Status)
	assert.Equal(t, placed.Version, unchanged.Version)

	// no status-changed event for a no-op
	assert.Len(t, pub.published, 1)
}

func TestTransitionStatusRolePermissions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	customer := role.Actor{UserID: 1, Role: role.RoleCustomer}
	restaurateur := role.Actor{UserID: 5, Role: role.RoleRestaurant}
	courier := role.Actor{UserID: 2, Role: role.RoleDelivery}

	placed := placeTestOrder(t, svc)

	// customers never drive the forward lifecycle
	_, err := svc.TransitionStatus(ctx, placed.ID, order.StatusAccepted, customer)
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	_, err = svc.TransitionStatus(ctx, placed.ID, order.StatusAccepted, restaurateur)
	require.NoError(t, err)

	// only couriers take orders out for delivery
	_, err = svc.TransitionStatus(ctx, placed.ID, order.StatusPreparing, restaurateur)
	require.NoError(t, err)
	_, err = svc.TransitionStatus(ctx, placed.ID, order.StatusOutForDelivery, restaurateur)
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	_, err = svc.TransitionStatus(ctx, placed.ID, order.StatusOutForDelivery, courier)
	require.NoError(t, err)
}

func TestTransitionStatusDeliveryActorRecordsPersonnel(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	courier := role.Actor{UserID: 2, Role: role.RoleDelivery}

	placed := placeTestOrder(t, svc)

	accepted, err := svc.TransitionStatus(ctx, placed.ID, order.StatusAccepted, courier)
	require.NoError(t, err)
	require.NotNil(t, accepted.DeliveryPersonnelID)
	assert.Equal(t, courier.UserID, *accepted.DeliveryPersonnelID)
}

func TestTransitionStatusKeepsRequestedDeliveryTime(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	admin := role.Actor{UserID: 7, Role: role.RoleAdmin}
	courier := role.Actor{UserID: 2, Role: role.RoleDelivery}

	requested := time.Date(2025, 8, 10, 19, 30, 0, 0, time.UTC)
	placed, err := svc.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID:   1,
		RestaurantID: 10,
		Lines:        []LineRequest{{MenuItemID: 100, Quantity: 1}},
		DeliveryTime: &requested,
	})
	require.NoError(t, err)

	for _, next := range []order.Status{order.StatusAccepted, order.StatusPreparing} {
		_, err = svc.TransitionStatus(ctx, placed.ID, next, admin)
		require.NoError(t, err)
	}
	_, err = svc.TransitionStatus(ctx, placed.ID, order.StatusOutForDelivery, courier)
	require.NoError(t, err)

	delivered, err := svc.TransitionStatus(ctx, placed.ID, order.StatusDelivered, courier)
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveryTime)
	assert.True(t, delivered.DeliveryTime.Equal(requested))
}

func TestTransitionStatusConflictOnConcurrentWrite(t *testing.T) {
	svc, work, _ := newTestService()
	ctx := context.Background()

	placed := placeTestOrder(t, svc)

	// another writer sneaks in between the read and the conditional write
	fired := false
	work.orderRepo.onGetByID = func(id int64) {
		if fired {
			return
		}
		fired = true
		_, err := work.orderRepo.UpdateStatus(ctx, order.StatusUpdate{
			OrderID:     id,
			FromVersion: placed.Version,
			Status:      order.StatusAccepted,
		})
		require.NoError(t, err)
	}

	_, err := svc.TransitionStatus(ctx, placed.ID, order.StatusCancelled, role.Actor{UserID: 7, Role: role.RoleAdmin})
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestCancelOrderCustomerRules(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	owner := role.Actor{UserID: 1, Role: role.RoleCustomer}
	stranger := role.Actor{UserID: 2, Role: role.RoleCustomer}
	admin := role.Actor{UserID: 7, Role: role.RoleAdmin}

	first := placeTestOrder(t, svc)

	_, err := svc.CancelOrder(ctx, first.ID, stranger)
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	cancelled, err := svc.CancelOrder(ctx, first.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	// once preparation started only staff may cancel
	second := placeTestOrder(t, svc)
	for _, next := range []order.Status{order.StatusAccepted, order.StatusPreparing} {
		_, err = svc.TransitionStatus(ctx, second.ID, next, admin)
		require.NoError(t, err)
	}

	_, err = svc.CancelOrder(ctx, second.ID, owner)
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	cancelled, err = svc.CancelOrder(ctx, second.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
}

func TestRescheduleOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	owner := role.Actor{UserID: 1, Role: role.RoleCustomer}
	stranger := role.Actor{UserID: 2, Role: role.RoleCustomer}
	courier := role.Actor{UserID: 2, Role: role.RoleDelivery}
	admin := role.Actor{UserID: 7, Role: role.RoleAdmin}

	placed := placeTestOrder(t, svc)
	newTime := time.Date(2025, 8, 11, 12, 0, 0, 0, time.UTC)

	_, err := svc.RescheduleOrder(ctx, placed.ID, newTime, courier)
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	_, err = svc.RescheduleOrder(ctx, placed.ID, newTime, stranger)
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	rescheduled, err := svc.RescheduleOrder(ctx, placed.ID, newTime, owner)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, rescheduled.Status)
	require.NotNil(t, rescheduled.DeliveryTime)
	assert.True(t, rescheduled.DeliveryTime.Equal(newTime))

	for _, next := range []order.Status{order.StatusAccepted, order.StatusPreparing} {
		_, err = svc.TransitionStatus(ctx, placed.ID, next, admin)
		require.NoError(t, err)
	}

	_, err = svc.RescheduleOrder(ctx, placed.ID, newTime, admin)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidTransition, errs.KindOf(err))
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetOrder(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestListOrders(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		placeTestOrder(t, svc)
	}

	orders, total, err := svc.ListOrders(ctx, ListOrdersQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, orders, 2)

	orders, total, err = svc.ListOrders(ctx, ListOrdersQuery{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, orders, 1)

	orders, _, err = svc.ListOrders(ctx, ListOrdersQuery{CustomerIds: []int64{2}})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestListOrdersRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newTestService()

	from := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	_, _, err := svc.ListOrders(context.Background(), ListOrdersQuery{CreatedFrom: &from, CreatedTo: &to})
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidInput, errs.KindOf(err))
}

func TestPublishFailureParksEventInOutbox(t *testing.T) {
	svc, work, pub := newTestService()
	pub.err = errors.New("broker down")

	placed := placeTestOrder(t, svc)
	assert.Equal(t, order.StatusPending, placed.Status)

	require.Len(t, work.outboxRepo.inserted, 1)
	msg := work.outboxRepo.inserted[0]
	assert.Equal(t, "food.order.events", msg.QueueName)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, outboxMaxRetries, msg.MaxRetries)
}
