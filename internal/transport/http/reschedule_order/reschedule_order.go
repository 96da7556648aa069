package rescheduleorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/internal/transport/http/respond"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	RescheduleOrder(ctx context.Context, orderID int64, deliveryTime time.Time, actor role.Actor) (order.Order, error)
}

type rescheduleRequest struct {
	DeliveryTime string `json:"deliveryTime"`
}

// RescheduleOrder handles a delivery time change for an order that has
// not started preparation yet.
func RescheduleOrder(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respond.Error(w, errs.InvalidInput("order id must be an integer"))

		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode request body"))
		slog.Error("Error decoding request body for reschedule", "error", err)

		return
	}

	if req.DeliveryTime == "" {
		respond.Error(w, errs.InvalidInput("deliveryTime is required"))

		return
	}

	deliveryTime, err := time.Parse(time.RFC3339, req.DeliveryTime)
	if err != nil {
		respond.Error(w, errs.InvalidInput("deliveryTime must be a valid RFC3339 timestamp"))

		return
	}

	rescheduled, err := service.RescheduleOrder(r.Context(), orderID, deliveryTime, actor)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error rescheduling order", "orderID", orderID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, rescheduled)
}
