package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/food-delivery/internal/service/models/currency"
	"github.com/corray333/food-delivery/internal/service/models/menuitem"
	"github.com/corray333/food-delivery/internal/service/models/restaurant"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MenuItemDal represents the menu item data access layer model.
type MenuItemDal struct {
	Id            int64     `db:"id"`
	RestaurantId  int64     `db:"restaurant_id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	PriceCents    int64     `db:"price_cents"`
	PriceCurrency string    `db:"price_currency"`
	Available     bool      `db:"available"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ToModel converts MenuItemDal to the service layer MenuItem model.
func (m *MenuItemDal) ToModel() (*menuitem.MenuItem, error) {
	cur, err := currency.ParseCurrency(m.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &menuitem.MenuItem{
		ID:            m.Id,
		RestaurantID:  m.RestaurantId,
		Name:          m.Name,
		Description:   m.Description,
		PriceCents:    m.PriceCents,
		PriceCurrency: cur,
		Available:     m.Available,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// RestaurantDal represents the restaurant data access layer model.
type RestaurantDal struct {
	Id           int64     `db:"id"`
	OwnerId      int64     `db:"owner_id"`
	Name         string    `db:"name"`
	Address      string    `db:"address"`
	CuisineType  string    `db:"cuisine_type"`
	OpeningHours string    `db:"opening_hours"`
	DeliveryZone string    `db:"delivery_zone"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ToModel converts RestaurantDal to the service layer Restaurant model.
func (r *RestaurantDal) ToModel() *restaurant.Restaurant {
	return &restaurant.Restaurant{
		ID:           r.Id,
		OwnerID:      r.OwnerId,
		Name:         r.Name,
		Address:      r.Address,
		CuisineType:  r.CuisineType,
		OpeningHours: r.OpeningHours,
		DeliveryZone: r.DeliveryZone,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresCatalogRepository serves catalog lookups for the order engine
// and catalog CRUD for the catalog service.
type PostgresCatalogRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

func NewPostgresCatalogRepository(conn GenericConn) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// UserExists reports whether a user row exists.
func (r *PostgresCatalogRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

// SetCourierAvailability flips the availability flag of a delivery user.
// Non-courier ids report not found.
func (r *PostgresCatalogRepository) SetCourierAvailability(ctx context.Context, courierID int64, available bool) error {
	tag, err := r.conn.Exec(
		ctx,
		"UPDATE users SET available = $1, updated_at = NOW() WHERE id = $2 AND role = 'delivery'",
		available,
		courierID,
	)
	if err != nil {
		return fmt.Errorf("failed to update courier availability: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return errs.NotFound("courier %d not found", courierID)
	}

	return nil
}

// RestaurantExists reports whether a restaurant row exists.
func (r *PostgresCatalogRepository) RestaurantExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM restaurants WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check restaurant existence: %w", err)
	}

	return exists, nil
}

var menuItemColumns = "id, restaurant_id, name, description, price_cents, price_currency, available, created_at, updated_at"

func scanMenuItem(row pgx.Row) (*menuitem.MenuItem, error) {
	var dal MenuItemDal
	err := row.Scan(
		&dal.Id,
		&dal.RestaurantId,
		&dal.Name,
		&dal.Description,
		&dal.PriceCents,
		&dal.PriceCurrency,
		&dal.Available,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

// GetMenuItem retrieves a single menu item.
func (r *PostgresCatalogRepository) GetMenuItem(ctx context.Context, id int64) (menuitem.MenuItem, error) {
	sql, args, err := r.sb.Select(menuItemColumns).From("menu_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to build query: %w", err)
	}

	model, err := scanMenuItem(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menuitem.MenuItem{}, errs.NotFound("menu item %d not found", id)
		}

		return menuitem.MenuItem{}, fmt.Errorf("failed to get menu item: %w", err)
	}

	return *model, nil
}

// ListMenu retrieves all menu items of a restaurant.
func (r *PostgresCatalogRepository) ListMenu(ctx context.Context, restaurantID int64) ([]menuitem.MenuItem, error) {
	sql, args, err := r.sb.
		Select(menuItemColumns).
		From("menu_items").
		Where(sq.Eq{"restaurant_id": restaurantID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var result []menuitem.MenuItem
	for rows.Next() {
		model, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// InsertMenuItem persists a new menu item.
func (r *PostgresCatalogRepository) InsertMenuItem(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error) {
	now := time.Now()
	sql, args, err := r.sb.
		Insert("menu_items").
		Columns("restaurant_id", "name", "description", "price_cents", "price_currency", "available", "created_at", "updated_at").
		Values(item.RestaurantID, item.Name, item.Description, item.PriceCents, item.PriceCurrency.String(), item.Available, now, now).
		Suffix("RETURNING " + menuItemColumns).
		ToSql()
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	model, err := scanMenuItem(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to insert menu item: %w", err)
	}

	return *model, nil
}

// UpdateMenuItem rewrites the provided fields of a menu item.
func (r *PostgresCatalogRepository) UpdateMenuItem(ctx context.Context, upd menuitem.UpdateMenuItemModel) (menuitem.MenuItem, error) {
	query := r.sb.
		Update("menu_items").
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": upd.ID}).
		Suffix("RETURNING " + menuItemColumns)

	if upd.Name != nil {
		query = query.Set("name", *upd.Name)
	}

	if upd.Description != nil {
		query = query.Set("description", *upd.Description)
	}

	if upd.PriceCents != nil {
		query = query.Set("price_cents", *upd.PriceCents)
	}

	if upd.Available != nil {
		query = query.Set("available", *upd.Available)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to build update query: %w", err)
	}

	model, err := scanMenuItem(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menuitem.MenuItem{}, errs.NotFound("menu item %d not found", upd.ID)
		}

		return menuitem.MenuItem{}, fmt.Errorf("failed to update menu item: %w", err)
	}

	return *model, nil
}

// DeleteMenuItem removes a menu item.
func (r *PostgresCatalogRepository) DeleteMenuItem(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return errs.NotFound("menu item %d not found", id)
	}

	return nil
}

var restaurantColumns = "id, owner_id, name, address, cuisine_type, opening_hours, delivery_zone, created_at, updated_at"

func scanRestaurant(row pgx.Row) (*restaurant.Restaurant, error) {
	var dal RestaurantDal
	err := row.Scan(
		&dal.Id,
		&dal.OwnerId,
		&dal.Name,
		&dal.Address,
		&dal.CuisineType,
		&dal.OpeningHours,
		&dal.DeliveryZone,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel(), nil
}

// GetRestaurant retrieves a single restaurant.
func (r *PostgresCatalogRepository) GetRestaurant(ctx context.Context, id int64) (restaurant.Restaurant, error) {
	sql, args, err := r.sb.Select(restaurantColumns).From("restaurants").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("failed to build query: %w", err)
	}

	model, err := scanRestaurant(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restaurant.Restaurant{}, errs.NotFound("restaurant %d not found", id)
		}

		return restaurant.Restaurant{}, fmt.Errorf("failed to get restaurant: %w", err)
	}

	return *model, nil
}

// ListRestaurantsByOwner retrieves all restaurants owned by a user.
func (r *PostgresCatalogRepository) ListRestaurantsByOwner(ctx context.Context, ownerID int64) ([]restaurant.Restaurant, error) {
	sql, args, err := r.sb.
		Select(restaurantColumns).
		From("restaurants").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	var result []restaurant.Restaurant
	for rows.Next() {
		model, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// InsertRestaurant persists a new restaurant.
func (r *PostgresCatalogRepository) InsertRestaurant(ctx context.Context, rest restaurant.Restaurant) (restaurant.Restaurant, error) {
	now := time.Now()
	sql, args, err := r.sb.
		Insert("restaurants").
		Columns("owner_id", "name", "address", "cuisine_type", "opening_hours", "delivery_zone", "created_at", "updated_at").
		Values(rest.OwnerID, rest.Name, rest.Address, rest.CuisineType, rest.OpeningHours, rest.DeliveryZone, now, now).
		Suffix("RETURNING " + restaurantColumns).
		ToSql()
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	model, err := scanRestaurant(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("failed to insert restaurant: %w", err)
	}

	return *model, nil
}

// UpdateRestaurant rewrites the provided fields of a restaurant.
func (r *PostgresCatalogRepository) UpdateRestaurant(ctx context.Context, upd restaurant.UpdateRestaurantModel) (restaurant.Restaurant, error) {
	query := r.sb.
		Update("restaurants").
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": upd.ID}).
		Suffix("RETURNING " + restaurantColumns)

	if upd.Name != nil {
		query = query.Set("name", *upd.Name)
	}

	if upd.Address != nil {
		query = query.Set("address", *upd.Address)
	}

	if upd.CuisineType != nil {
		query = query.Set("cuisine_type", *upd.CuisineType)
	}

	if upd.OpeningHours != nil {
		query = query.Set("opening_hours", *upd.OpeningHours)
	}

	if upd.DeliveryZone != nil {
		query = query.Set("delivery_zone", *upd.DeliveryZone)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("failed to build update query: %w", err)
	}

	model, err := scanRestaurant(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restaurant.Restaurant{}, errs.NotFound("restaurant %d not found", upd.ID)
		}

		return restaurant.Restaurant{}, fmt.Errorf("failed to update restaurant: %w", err)
	}

	return *model, nil
}
