package reportsvc

import (
	"context"

	"github.com/corray333/food-delivery/internal/dal/interfaces/ireportrepo"
	"github.com/corray333/food-delivery/internal/dal/postgres"
	reportrepo "github.com/corray333/food-delivery/internal/dal/repositories/report/postgres"
	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/report"
	"github.com/corray333/food-delivery/pkg/errs"
)

// ReportService derives metrics from persisted order records. Read-only;
// empty data yields zeros, never errors.
type ReportService struct {
	repo ireportrepo.IReportRepository
}

// option is a function that configures the ReportService.
type option func(*ReportService)

// MustNewReportService creates a new ReportService.
func MustNewReportService(opts ...option) *ReportService {
	s := &ReportService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the ReportService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *ReportService) {
		s.repo = reportrepo.NewPostgresReportRepository(pgClient.Pool())
	}
}

// WithReportRepository sets the report repository directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithReportRepository(repo ireportrepo.IReportRepository) option {
	return func(s *ReportService) {
		s.repo = repo
	}
}

const defaultPopularLimit = 10

// PopularRestaurants returns the top restaurants by order count.
func (s *ReportService) PopularRestaurants(ctx context.Context, limit int) ([]report.RestaurantOrderCount, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}

	rows, err := s.repo.PopularRestaurants(ctx, limit)
	if err != nil {
		return nil, errs.Unavailable(err, "failed to compute popular restaurants")
	}

	if rows == nil {
		rows = []report.RestaurantOrderCount{}
	}

	return rows, nil
}

// AverageDeliveryTime returns the mean minutes between order creation and
// delivery over Delivered orders in the range. Zero when none qualify.
func (s *ReportService) AverageDeliveryTime(ctx context.Context, rng report.DateRange) (float64, error) {
	if err := validateRange(rng); err != nil {
		return 0, err
	}

	avg, err := s.repo.AverageDeliveryMinutes(ctx, rng)
	if err != nil {
		return 0, errs.Unavailable(err, "failed to compute average delivery time")
	}

	return avg, nil
}

// OrderTrends returns order counts grouped by truncated creation date,
// ascending.
func (s *ReportService) OrderTrends(ctx context.Context, interval report.TrendInterval, rng report.DateRange) ([]report.TrendBucket, error) {
	if interval != report.IntervalDay && interval != report.IntervalMonth {
		return nil, errs.InvalidInput("interval must be day or month")
	}

	if err := validateRange(rng); err != nil {
		return nil, err
	}

	buckets, err := s.repo.OrderTrends(ctx, interval, rng)
	if err != nil {
		return nil, errs.Unavailable(err, "failed to compute order trends")
	}

	if buckets == nil {
		buckets = []report.TrendBucket{}
	}

	return buckets, nil
}

// OrderStatusHistogram returns order counts per status, descending.
func (s *ReportService) OrderStatusHistogram(ctx context.Context) ([]report.StatusCount, error) {
	counts, err := s.repo.StatusHistogram(ctx)
	if err != nil {
		return nil, errs.Unavailable(err, "failed to compute status histogram")
	}

	if counts == nil {
		counts = []report.StatusCount{}
	}

	return counts, nil
}

// PlatformHealth folds the status histogram into a coarse activity
// snapshot.
func (s *ReportService) PlatformHealth(ctx context.Context) (report.PlatformHealth, error) {
	counts, err := s.OrderStatusHistogram(ctx)
	if err != nil {
		return report.PlatformHealth{}, err
	}

	var health report.PlatformHealth
	for _, c := range counts {
		switch c.Status {
		case order.StatusPending:
			health.Pending += c.Count
		case order.StatusAccepted, order.StatusPreparing, order.StatusOutForDelivery:
			health.InProgress += c.Count
		case order.StatusDelivered:
			health.Completed += c.Count
		case order.StatusCancelled:
			health.Cancelled += c.Count
		}
	}

	return health, nil
}

func validateRange(rng report.DateRange) error {
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		return errs.InvalidInput("date range start is after its end")
	}

	return nil
}
