package catalogsvc

import (
	"context"

	"github.com/corray333/food-delivery/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/food-delivery/internal/dal/postgres"
	catalogrepo "github.com/corray333/food-delivery/internal/dal/repositories/catalog/postgres"
	"github.com/corray333/food-delivery/internal/service/models/currency"
	"github.com/corray333/food-delivery/internal/service/models/menuitem"
	"github.com/corray333/food-delivery/internal/service/models/restaurant"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/pkg/errs"
)

// CatalogService manages restaurants and menu items. It doubles as the
// order engine's catalog collaborator.
type CatalogService struct {
	repo icatalogrepo.ICatalogRepository
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the CatalogService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CatalogService) {
		s.repo = catalogrepo.NewPostgresCatalogRepository(pgClient.Pool())
	}
}

// CreateRestaurant registers a restaurant owned by the acting user.
// Restricted to restaurant and admin roles.
func (s *CatalogService) CreateRestaurant(ctx context.Context, r restaurant.Restaurant, actor role.Actor) (restaurant.Restaurant, error) {
	if actor.Role != role.RoleRestaurant && actor.Role != role.RoleAdmin {
		return restaurant.Restaurant{}, errs.Forbidden("role %s may not create restaurants", actor.Role)
	}

	if r.Name == "" || r.Address == "" {
		return restaurant.Restaurant{}, errs.InvalidInput("restaurant name and address are required")
	}

	if actor.Role == role.RoleRestaurant {
		r.OwnerID = actor.UserID
	}

	created, err := s.repo.InsertRestaurant(ctx, r)
	if err != nil {
		return restaurant.Restaurant{}, asStoreFailure(err)
	}

	return created, nil
}

// UpdateRestaurant rewrites the provided restaurant fields. Owners may
// update only their own restaurants.
func (s *CatalogService) UpdateRestaurant(ctx context.Context, upd restaurant.UpdateRestaurantModel, actor role.Actor) (restaurant.Restaurant, error) {
	if actor.Role != role.RoleRestaurant && actor.Role != role.RoleAdmin {
		return restaurant.Restaurant{}, errs.Forbidden("role %s may not update restaurants", actor.Role)
	}

	if actor.Role == role.RoleRestaurant {
		current, err := s.repo.GetRestaurant(ctx, upd.ID)
		if err != nil {
			return restaurant.Restaurant{}, asStoreFailure(err)
		}

		if current.OwnerID != actor.UserID {
			return restaurant.Restaurant{}, errs.Forbidden("user %d does not own restaurant %d", actor.UserID, upd.ID)
		}
	}

	updated, err := s.repo.UpdateRestaurant(ctx, upd)
	if err != nil {
		return restaurant.Restaurant{}, asStoreFailure(err)
	}

	return updated, nil
}

// ListRestaurants returns the restaurants owned by a user.
func (s *CatalogService) ListRestaurants(ctx context.Context, ownerID int64) ([]restaurant.Restaurant, error) {
	restaurants, err := s.repo.ListRestaurantsByOwner(ctx, ownerID)
	if err != nil {
		return nil, asStoreFailure(err)
	}

	if restaurants == nil {
		restaurants = []restaurant.Restaurant{}
	}

	return restaurants, nil
}

// ListMenu returns the menu of a restaurant.
func (s *CatalogService) ListMenu(ctx context.Context, restaurantID int64) ([]menuitem.MenuItem, error) {
	items, err := s.repo.ListMenu(ctx, restaurantID)
	if err != nil {
		return nil, asStoreFailure(err)
	}

	if items == nil {
		items = []menuitem.MenuItem{}
	}

	return items, nil
}

// AddMenuItem creates a menu item on a restaurant the actor controls.
func (s *CatalogService) AddMenuItem(ctx context.Context, item menuitem.MenuItem, actor role.Actor) (menuitem.MenuItem, error) {
	if actor.Role != role.RoleRestaurant && actor.Role != role.RoleAdmin {
		return menuitem.MenuItem{}, errs.Forbidden("role %s may not manage menus", actor.Role)
	}

	if item.Name == "" {
		return menuitem.MenuItem{}, errs.InvalidInput("menu item name is required")
	}

	if item.PriceCents < 0 {
		return menuitem.MenuItem{}, errs.InvalidInput("menu item price must not be negative")
	}

	if item.PriceCurrency == "" {
		item.PriceCurrency = currency.CurrencyUSD
	}

	if err := s.checkRestaurantOwnership(ctx, item.RestaurantID, actor); err != nil {
		return menuitem.MenuItem{}, err
	}

	created, err := s.repo.InsertMenuItem(ctx, item)
	if err != nil {
		return menuitem.MenuItem{}, asStoreFailure(err)
	}

	return created, nil
}

// UpdateMenuItem rewrites the provided menu item fields.
func (s *CatalogService) UpdateMenuItem(ctx context.Context, upd menuitem.UpdateMenuItemModel, actor role.Actor) (menuitem.MenuItem, error) {
	if actor.Role != role.RoleRestaurant && actor.Role != role.RoleAdmin {
		return menuitem.MenuItem{}, errs.Forbidden("role %s may not manage menus", actor.Role)
	}

	if upd.PriceCents != nil && *upd.PriceCents < 0 {
		return menuitem.MenuItem{}, errs.InvalidInput("menu item price must not be negative")
	}

	current, err := s.repo.GetMenuItem(ctx, upd.ID)
	if err != nil {
		return menuitem.MenuItem{}, asStoreFailure(err)
	}

	if err := s.checkRestaurantOwnership(ctx, current.RestaurantID, actor); err != nil {
		return menuitem.MenuItem{}, err
	}

	updated, err := s.repo.UpdateMenuItem(ctx, upd)
	if err != nil {
		return menuitem.MenuItem{}, asStoreFailure(err)
	}

	return updated, nil
}

// DeleteMenuItem removes a menu item.
func (s *CatalogService) DeleteMenuItem(ctx context.Context, id int64, actor role.Actor) error {
	if actor.Role != role.RoleRestaurant && actor.Role != role.RoleAdmin {
		return errs.Forbidden("role %s may not manage menus", actor.Role)
	}

	current, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return asStoreFailure(err)
	}

	if err := s.checkRestaurantOwnership(ctx, current.RestaurantID, actor); err != nil {
		return err
	}

	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		return asStoreFailure(err)
	}

	return nil
}

// SetCourierAvailability flips whether a courier is taking deliveries.
// Couriers may toggle only themselves; admins may toggle anyone.
func (s *CatalogService) SetCourierAvailability(ctx context.Context, courierID int64, available bool, actor role.Actor) error {
	switch actor.Role {
	case role.RoleAdmin:
	case role.RoleDelivery:
		if courierID != actor.UserID {
			return errs.Forbidden("courier %d may not change availability of courier %d", actor.UserID, courierID)
		}
	default:
		return errs.Forbidden("role %s may not change courier availability", actor.Role)
	}

	if err := s.repo.SetCourierAvailability(ctx, courierID, available); err != nil {
		return asStoreFailure(err)
	}

	return nil
}

func (s *CatalogService) checkRestaurantOwnership(ctx context.Context, restaurantID int64, actor role.Actor) error {
	if actor.Role == role.RoleAdmin {
		return nil
	}

	current, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return asStoreFailure(err)
	}

	if current.OwnerID != actor.UserID {
		return errs.Forbidden("user %d does not own restaurant %d", actor.UserID, restaurantID)
	}

	return nil
}

func asStoreFailure(err error) error {
	if errs.KindOf(err) != errs.KindUnknown {
		return err
	}

	return errs.Unavailable(err, "storage failure")
}
