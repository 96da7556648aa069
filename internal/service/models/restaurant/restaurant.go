package restaurant

import "time"

// Restaurant is a food vendor owned by a restaurant-role user.
type Restaurant struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"ownerId"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	CuisineType  string    `json:"cuisineType,omitempty"`
	OpeningHours string    `json:"openingHours,omitempty"`
	DeliveryZone string    `json:"deliveryZone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UpdateRestaurantModel carries the mutable restaurant fields; nil means
// leave unchanged.
type UpdateRestaurantModel struct {
	ID           int64
	Name         *string
	Address      *string
	CuisineType  *string
	OpeningHours *string
	DeliveryZone *string
}
