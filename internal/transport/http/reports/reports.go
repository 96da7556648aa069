package reports

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/corray333/food-delivery/internal/service/models/report"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/internal/transport/http/respond"
	"github.com/corray333/food-delivery/pkg/errs"
)

// service is an interface for the service layer.
type service interface {
	PopularRestaurants(ctx context.Context, limit int) ([]report.RestaurantOrderCount, error)
	AverageDeliveryTime(ctx context.Context, rng report.DateRange) (float64, error)
	OrderTrends(ctx context.Context, interval report.TrendInterval, rng report.DateRange) ([]report.TrendBucket, error)
	OrderStatusHistogram(ctx context.Context) ([]report.StatusCount, error)
	PlatformHealth(ctx context.Context) (report.PlatformHealth, error)
}

func requireAdmin(w http.ResponseWriter, actor role.Actor) bool {
	if actor.Role != role.RoleAdmin {
		respond.Error(w, errs.Forbidden("role %s may not read reports", actor.Role))

		return false
	}

	return true
}

func parseRange(r *http.Request) (report.DateRange, error) {
	var rng report.DateRange

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return rng, errs.InvalidInput("from must be a valid RFC3339 timestamp")
		}
		rng.From = &t
	}

	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return rng, errs.InvalidInput("to must be a valid RFC3339 timestamp")
		}
		rng.To = &t
	}

	return rng, nil
}

// PopularRestaurants handles the restaurant ranking report.
func PopularRestaurants(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	if !requireAdmin(w, actor) {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(w, errs.InvalidInput("limit must be an integer"))

			return
		}
		limit = parsed
	}

	ranking, err := service.PopularRestaurants(r.Context(), limit)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error building popular restaurants report", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, ranking)
}

type averageDeliveryTimeResponse struct {
	AverageDeliveryMinutes float64 `json:"averageDeliveryMinutes"`
}

// AverageDeliveryTime handles the mean delivery duration report.
func AverageDeliveryTime(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	if !requireAdmin(w, actor) {
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	minutes, err := service.AverageDeliveryTime(r.Context(), rng)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error building average delivery time report", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, averageDeliveryTimeResponse{AverageDeliveryMinutes: minutes})
}

// OrderTrends handles the order volume time series report.
func OrderTrends(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	if !requireAdmin(w, actor) {
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	interval := report.TrendInterval(r.URL.Query().Get("interval"))
	if interval == "" {
		interval = report.IntervalDay
	}

	trends, err := service.OrderTrends(r.Context(), interval, rng)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error building order trends report", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, trends)
}

// OrderStatusHistogram handles the order count by status report.
func OrderStatusHistogram(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	if !requireAdmin(w, actor) {
		return
	}

	histogram, err := service.OrderStatusHistogram(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error building status histogram report", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, histogram)
}

// PlatformHealth handles the lifecycle stage summary. Unlike the other
// reports it is open to any authenticated role.
func PlatformHealth(w http.ResponseWriter, r *http.Request, service service, _ role.Actor) {
	health, err := service.PlatformHealth(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error building platform health report", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, health)
}
