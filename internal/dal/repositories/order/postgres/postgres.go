package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/food-delivery/internal/service/models/currency"
	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/orderitem"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                  int64      `db:"id"`
	CustomerId          int64      `db:"customer_id"`
	RestaurantId        int64      `db:"restaurant_id"`
	Status              string     `db:"status"`
	TotalPriceCents     int64      `db:"total_price_cents"`
	TotalPriceCurrency  string     `db:"total_price_currency"`
	DeliveryPersonnelId *int64     `db:"delivery_personnel_id"`
	DeliveryTime        *time.Time `db:"delivery_time"`
	Version             int64      `db:"version"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.TotalPriceCurrency)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:                  o.Id,
		CustomerID:          o.CustomerId,
		RestaurantID:        o.RestaurantId,
		Status:              status,
		TotalPriceCents:     o.TotalPriceCents,
		TotalPriceCurrency:  cur,
		DeliveryPersonnelID: o.DeliveryPersonnelId,
		DeliveryTime:        o.DeliveryTime,
		Version:             o.Version,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		OrderItems:          []orderitem.OrderItem{}, // Will be populated separately
	}, nil
}

// OrderDalFromModel converts the service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:                  o.ID,
		CustomerId:          o.CustomerID,
		RestaurantId:        o.RestaurantID,
		Status:              o.Status.String(),
		TotalPriceCents:     o.TotalPriceCents,
		TotalPriceCurrency:  o.TotalPriceCurrency.String(),
		DeliveryPersonnelId: o.DeliveryPersonnelID,
		DeliveryTime:        o.DeliveryTime,
		Version:             o.Version,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

var orderColumns = []string{
	"id",
	"customer_id",
	"restaurant_id",
	"status",
	"total_price_cents",
	"total_price_currency",
	"delivery_personnel_id",
	"delivery_time",
	"version",
	"created_at",
	"updated_at",
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresOrderRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

func NewPostgresOrderRepository(conn GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	var deliveryTime pgtype.Timestamptz

	err := row.Scan(
		&dal.Id,
		&dal.CustomerId,
		&dal.RestaurantId,
		&dal.Status,
		&dal.TotalPriceCents,
		&dal.TotalPriceCurrency,
		&dal.DeliveryPersonnelId,
		&deliveryTime,
		&dal.Version,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deliveryTime.Valid {
		t := deliveryTime.Time
		dal.DeliveryTime = &t
	}

	return dal.ToModel()
}

// Insert persists a single order and returns it with the generated id
// and version.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	query := r.sb.
		Insert("orders").
		Columns(
			"customer_id",
			"restaurant_id",
			"status",
			"total_price_cents",
			"total_price_currency",
			"delivery_personnel_id",
			"delivery_time",
			"created_at",
			"updated_at",
		).
		Values(
			o.CustomerID,
			o.RestaurantID,
			o.Status.String(),
			o.TotalPriceCents,
			o.TotalPriceCurrency.String(),
			o.DeliveryPersonnelID,
			o.DeliveryTime,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING " + joinColumns())

	sql, args, err := query.ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	model, err := scanOrder(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	model.OrderItems = append(model.OrderItems, o.OrderItems...)

	return *model, nil
}

// GetByID retrieves a single order without its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build query: %w", err)
	}

	model, err := scanOrder(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, errs.NotFound("order %d not found", id)
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	return *model, nil
}

// UpdateStatus applies the status change only while the stored version
// still matches upd.FromVersion. A lost race surfaces as Conflict.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, upd order.StatusUpdate) (order.Order, error) {
	query := r.sb.
		Update("orders").
		Set("status", upd.Status.String()).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": upd.OrderID, "version": upd.FromVersion}).
		Suffix("RETURNING " + joinColumns())

	if upd.DeliveryPersonnelID != nil {
		query = query.Set("delivery_personnel_id", *upd.DeliveryPersonnelID)
	}

	if upd.DeliveryTime != nil {
		query = query.Set("delivery_time", *upd.DeliveryTime)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	model, err := scanOrder(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, r.staleOrMissing(ctx, upd.OrderID)
		}

		return order.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}

	return *model, nil
}

// UpdateDeliveryTime rewrites the target delivery time under the same
// version check as UpdateStatus.
func (r *PostgresOrderRepository) UpdateDeliveryTime(ctx context.Context, id, fromVersion int64, deliveryTime time.Time) (order.Order, error) {
	query := r.sb.
		Update("orders").
		Set("delivery_time", deliveryTime).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "version": fromVersion}).
		Suffix("RETURNING " + joinColumns())

	sql, args, err := query.ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	model, err := scanOrder(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, r.staleOrMissing(ctx, id)
		}

		return order.Order{}, fmt.Errorf("failed to update delivery time: %w", err)
	}

	return *model, nil
}

// staleOrMissing distinguishes a lost version race from a missing order.
func (r *PostgresOrderRepository) staleOrMissing(ctx context.Context, id int64) error {
	var exists bool
	err := r.conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check order existence: %w", err)
	}

	if exists {
		return errs.Conflict("order %d was modified concurrently", id)
	}

	return errs.NotFound("order %d not found", id)
}

// Query retrieves orders based on filter criteria. Zero-valued filter
// fields are ignored.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC")

	query = applyFilter(query, filter)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Count returns the number of orders matching the filter, ignoring
// pagination.
func (r *PostgresOrderRepository) Count(ctx context.Context, filter *order.QueryOrdersModel) (int64, error) {
	query := applyFilter(r.sb.Select("COUNT(*)").From("orders"), filter)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

func applyFilter(query sq.SelectBuilder, filter *order.QueryOrdersModel) sq.SelectBuilder {
	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.CustomerIds) > 0 {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}

	if len(filter.RestaurantIds) > 0 {
		query = query.Where(sq.Eq{"restaurant_id": filter.RestaurantIds})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, s.String())
		}
		query = query.Where(sq.Eq{"status": statuses})
	}

	if filter.CreatedFrom != nil {
		query = query.Where(sq.GtOrEq{"created_at": *filter.CreatedFrom})
	}

	if filter.CreatedTo != nil {
		query = query.Where(sq.Lt{"created_at": *filter.CreatedTo})
	}

	return query
}

func joinColumns() string {
	out := orderColumns[0]
	for _, c := range orderColumns[1:] {
		out += ", " + c
	}

	return out
}
