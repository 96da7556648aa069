package menuitem

import (
	"time"

	"github.com/corray333/food-delivery/internal/service/models/currency"
)

// MenuItem is a dish offered by a restaurant.
type MenuItem struct {
	ID            int64             `json:"id"`
	RestaurantID  int64             `json:"restaurantId"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	Available     bool              `json:"available"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// UpdateMenuItemModel carries the mutable menu item fields; nil means
// leave unchanged.
type UpdateMenuItemModel struct {
	ID          int64
	Name        *string
	Description *string
	PriceCents  *int64
	Available   *bool
}
