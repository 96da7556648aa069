package icatalogrepo

import (
	"context"

	"github.com/corray333/food-delivery/internal/service/models/menuitem"
	"github.com/corray333/food-delivery/internal/service/models/restaurant"
)

// ICatalogRepository is an interface for the catalog postgres repository:
// users, restaurants and menu items.
type ICatalogRepository interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	SetCourierAvailability(ctx context.Context, courierID int64, available bool) error
	RestaurantExists(ctx context.Context, id int64) (bool, error)

	GetMenuItem(ctx context.Context, id int64) (menuitem.MenuItem, error)
	ListMenu(ctx context.Context, restaurantID int64) ([]menuitem.MenuItem, error)
	InsertMenuItem(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error)
	UpdateMenuItem(ctx context.Context, upd menuitem.UpdateMenuItemModel) (menuitem.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error

	GetRestaurant(ctx context.Context, id int64) (restaurant.Restaurant, error)
	ListRestaurantsByOwner(ctx context.Context, ownerID int64) ([]restaurant.Restaurant, error)
	InsertRestaurant(ctx context.Context, r restaurant.Restaurant) (restaurant.Restaurant, error)
	UpdateRestaurant(ctx context.Context, upd restaurant.UpdateRestaurantModel) (restaurant.Restaurant, error)
}
