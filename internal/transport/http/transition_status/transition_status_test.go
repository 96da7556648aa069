package transitionstatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type stubService struct {
	gotOrderID int64
	gotStatus  order.Status
	gotActor   role.Actor
	out        order.Order
	err        error
}

func (s *stubService) TransitionStatus(_ context.Context, orderID int64, to order.Status, actor role.Actor) (order.Order, error) {
	s.gotOrderID = orderID
	s.gotStatus = to
	s.gotActor = actor
	return s.out, s.err
}

func doRequest(svc *stubService, orderID, body string, actor role.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+orderID+"/status", strings.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", orderID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	TransitionStatus(rec, req, svc, actor)
	return rec
}

func TestTransitionStatusHandler(t *testing.T) {
	svc := &stubService{out: order.Order{ID: 5, Status: order.StatusAccepted}}
	actor := role.Actor{UserID: 5, Role: role.RoleRestaurant}

	rec := doRequest(svc, "5", `{"status":"Accepted"}`, actor)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), svc.gotOrderID)
	assert.Equal(t, order.StatusAccepted, svc.gotStatus)
	assert.Equal(t, actor, svc.gotActor)
}

func TestTransitionStatusHandlerRejectsBadInput(t *testing.T) {
	actor := role.Actor{UserID: 5, Role: role.RoleRestaurant}

	rec := doRequest(&stubService{}, "abc", `{"status":"Accepted"}`, actor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(&stubService{}, "5", `{"status":`, actor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(&stubService{}, "5", `{"status":"Shipped"}`, actor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransitionStatusHandlerMapsServiceErrors(t *testing.T) {
	actor := role.Actor{UserID: 5, Role: role.RoleRestaurant}

	tests := []struct {
		err        error
		wantStatus int
	}{
		{errs.NotFound("order 5 not found"), http.StatusNotFound},
		{errs.InvalidTransition("cannot transition"), http.StatusUnprocessableEntity},
		{errs.Forbidden("role may not"), http.StatusForbidden},
		{errs.Conflict("modified concurrently"), http.StatusConflict},
	}

	for _, tt := range tests {
		rec := doRequest(&stubService{err: tt.err}, "5", `{"status":"Accepted"}`, actor)
		assert.Equal(t, tt.wantStatus, rec.Code, "%v", tt.err)
	}
}
