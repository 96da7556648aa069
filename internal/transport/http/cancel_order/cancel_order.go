package cancelorder

import (
	"context"
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
	CancelOrder(ctx context.Context, orderID int64, actor role.Actor) (order.Order, error)
}

// CancelOrder handles an order cancellation request.
func CancelOrder(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respond.Error(w, errs.InvalidInput("order id must be an integer"))

		return
	}

	cancelled, err := service.CancelOrder(r.Context(), orderID, actor)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error cancelling order", "orderID", orderID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, cancelled)
}
