package ireportrepo

import (
	"context"

	"github.com/corray333/food-delivery/internal/service/models/report"
)

// IReportRepository is a read-only interface over persisted order records.
type IReportRepository interface {
	PopularRestaurants(ctx context.Context, limit int) ([]report.RestaurantOrderCount, error)
	AverageDeliveryMinutes(ctx context.Context, rng report.DateRange) (float64, error)
	OrderTrends(ctx context.Context, interval report.TrendInterval, rng report.DateRange) ([]report.TrendBucket, error)
	StatusHistogram(ctx context.Context) ([]report.StatusCount, error)
}
