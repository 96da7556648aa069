package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/report"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresReportRepository derives reporting aggregations from persisted
// order records. Read-only.
type PostgresReportRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

func NewPostgresReportRepository(conn GenericConn) *PostgresReportRepository {
	return &PostgresReportRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// PopularRestaurants groups orders by restaurant and returns the top
// restaurants by order count, ties broken by restaurant id ascending.
func (r *PostgresReportRepository) PopularRestaurants(ctx context.Context, limit int) ([]report.RestaurantOrderCount, error) {
	sql, args, err := r.sb.
		Select("restaurant_id", "COUNT(*) AS order_count").
		From("orders").
		GroupBy("restaurant_id").
		OrderBy("order_count DESC", "restaurant_id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular restaurants: %w", err)
	}
	defer rows.Close()

	var result []report.RestaurantOrderCount
	for rows.Next() {
		var row report.RestaurantOrderCount
		if err := rows.Scan(&row.RestaurantID, &row.OrderCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// AverageDeliveryMinutes computes the mean delivery duration over
// Delivered orders with a delivery time set. Zero when nothing qualifies.
func (r *PostgresReportRepository) AverageDeliveryMinutes(ctx context.Context, rng report.DateRange) (float64, error) {
	query := r.sb.
		Select("COALESCE(AVG(EXTRACT(EPOCH FROM (delivery_time - created_at)) / 60), 0)").
		From("orders").
		Where(sq.Eq{"status": order.StatusDelivered.String()}).
		Where("delivery_time IS NOT NULL")

	query = applyRange(query, rng)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var avg float64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to query average delivery time: %w", err)
	}

	return avg, nil
}

// OrderTrends groups order counts by truncated creation date, ascending.
func (r *PostgresReportRepository) OrderTrends(ctx context.Context, interval report.TrendInterval, rng report.DateRange) ([]report.TrendBucket, error) {
	// interval is validated by the service layer; it reaches SQL only as
	// one of the two literals below.
	trunc := "day"
	if interval == report.IntervalMonth {
		trunc = "month"
	}

	query := r.sb.
		Select(fmt.Sprintf("date_trunc('%s', created_at) AS period", trunc), "COUNT(*) AS order_count").
		From("orders").
		GroupBy("period").
		OrderBy("period ASC")

	query = applyRange(query, rng)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order trends: %w", err)
	}
	defer rows.Close()

	var result []report.TrendBucket
	for rows.Next() {
		var row report.TrendBucket
		if err := rows.Scan(&row.Period, &row.OrderCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// StatusHistogram counts orders per status, descending by count.
func (r *PostgresReportRepository) StatusHistogram(ctx context.Context) ([]report.StatusCount, error) {
	sql, args, err := r.sb.
		Select("status", "COUNT(*) AS order_count").
		From("orders").
		GroupBy("status").
		OrderBy("order_count DESC", "status ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query status histogram: %w", err)
	}
	defer rows.Close()

	var result []report.StatusCount
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		parsed, err := order.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("unexpected status in histogram: %w", err)
		}

		result = append(result, report.StatusCount{Status: parsed, Count: count})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func applyRange(query sq.SelectBuilder, rng report.DateRange) sq.SelectBuilder {
	if rng.From != nil {
		query = query.Where(sq.GtOrEq{"created_at": *rng.From})
	}

	if rng.To != nil {
		query = query.Where(sq.Lt{"created_at": *rng.To})
	}

	return query
}
