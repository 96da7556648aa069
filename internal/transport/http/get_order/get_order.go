package getorder

import (
	"context"
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
	GetOrder(ctx context.Context, orderID int64) (order.Order, error)
}

// GetOrder handles the single order fetch. Customers may only read their
// own orders.
func GetOrder(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respond.Error(w, errs.InvalidInput("order id must be an integer"))

		return
	}

	o, err := service.GetOrder(r.Context(), orderID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	if actor.Role == role.RoleCustomer && o.CustomerID != actor.UserID {
		respond.Error(w, errs.Forbidden("customer %d may not read order %d", actor.UserID, orderID))

		return
	}

	respond.JSON(w, http.StatusOK, o)
}
