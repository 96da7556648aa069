package placeorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/internal/service/services/ordersvc"
	"github.com/corray333/food-delivery/internal/transport/http/respond"
	"github.com/corray333/food-delivery/pkg/errs"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, req ordersvc.PlaceOrderRequest) (order.Order, error)
}

type lineRequest struct {
	MenuItemID int64 `json:"menuItemId"`
	Quantity   int   `json:"quantity"`
}

type placeOrderRequest struct {
	CustomerID   int64         `json:"customerId,omitempty"`
	RestaurantID int64         `json:"restaurantId"`
	Items        []lineRequest `json:"items"`
	DeliveryTime string        `json:"deliveryTime,omitempty"`
}

// PlaceOrder handles the order placement request.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode request body"))
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	if actor.Role != role.RoleCustomer && actor.Role != role.RoleAdmin {
		respond.Error(w, errs.Forbidden("role %s may not place orders", actor.Role))

		return
	}

	customerID := req.CustomerID
	if actor.Role == role.RoleCustomer {
		customerID = actor.UserID
	}

	svcReq := ordersvc.PlaceOrderRequest{
		CustomerID:   customerID,
		RestaurantID: req.RestaurantID,
	}

	for _, line := range req.Items {
		svcReq.Lines = append(svcReq.Lines, ordersvc.LineRequest{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
		})
	}

	if req.DeliveryTime != "" {
		t, err := time.Parse(time.RFC3339, req.DeliveryTime)
		if err != nil {
			respond.Error(w, errs.InvalidInput("deliveryTime must be a valid RFC3339 timestamp"))

			return
		}
		svcReq.DeliveryTime = &t
	}

	placed, err := service.PlaceOrder(r.Context(), svcReq)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error placing order", "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, placed)
}
