package listorders

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/internal/service/services/ordersvc"
	"github.com/corray333/food-delivery/internal/transport/http/respond"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/gorilla/schema"
)

// service is an interface for the service layer.
type service interface {
	ListOrders(ctx context.Context, q ordersvc.ListOrdersQuery) ([]order.Order, int64, error)
}

type listOrdersRequest struct {
	RestaurantIds []int64  `schema:"restaurantIds,omitempty"`
	CustomerIds   []int64  `schema:"customerIds,omitempty"`
	Statuses      []string `schema:"statuses,omitempty"`
	From          string   `schema:"from,omitempty"`
	To            string   `schema:"to,omitempty"`
	Page          int      `schema:"page,omitempty"`
	PageSize      int      `schema:"pageSize,omitempty"`
}

type listOrdersResponse struct {
	Orders     []order.Order `json:"orders"`
	TotalCount int64         `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
}

// ListOrders handles the order listing request. Customers are scoped to
// their own orders.
func ListOrders(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	req := &listOrdersRequest{}
	if err := decoder.Decode(req, r.URL.Query()); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode query parameters"))
		slog.Error("Error decoding list orders request", "error", err)

		return
	}

	q := ordersvc.ListOrdersQuery{
		RestaurantIds: req.RestaurantIds,
		CustomerIds:   req.CustomerIds,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}

	for _, s := range req.Statuses {
		status, err := order.ParseStatus(s)
		if err != nil {
			respond.Error(w, errs.InvalidInput("unknown status %q", s))

			return
		}
		q.Statuses = append(q.Statuses, status)
	}

	if req.From != "" {
		t, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			respond.Error(w, errs.InvalidInput("from must be a valid RFC3339 timestamp"))

			return
		}
		q.CreatedFrom = &t
	}

	if req.To != "" {
		t, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			respond.Error(w, errs.InvalidInput("to must be a valid RFC3339 timestamp"))

			return
		}
		q.CreatedTo = &t
	}

	if actor.Role == role.RoleCustomer {
		q.CustomerIds = []int64{actor.UserID}
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = ordersvc.DefaultPageSize
	}

	orders, total, err := service.ListOrders(r.Context(), q)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting orders", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, listOrdersResponse{
		Orders:     orders,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
}
