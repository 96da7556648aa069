package transitionstatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/internal/transport/http/respond"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	TransitionStatus(ctx context.Context, orderID int64, to order.Status, actor role.Actor) (order.Order, error)
}

type transitionRequest struct {
	Status string `json:"status"`
}

// TransitionStatus handles a status change request for a single order.
func TransitionStatus(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respond.Error(w, errs.InvalidInput("order id must be an integer"))

		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode request body"))
		slog.Error("Error decoding request body for status transition", "error", err)

		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, errs.InvalidInput("unknown status %q", req.Status))

		return
	}

	updated, err := service.TransitionStatus(r.Context(), orderID, status, actor)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error transitioning order status", "orderID", orderID, "status", status, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, updated)
}
