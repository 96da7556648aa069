package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/food-delivery/internal/service/models/menuitem"
	"github.com/corray333/food-delivery/internal/service/models/restaurant"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/internal/transport/http/respond"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	CreateRestaurant(ctx context.Context, r restaurant.Restaurant, actor role.Actor) (restaurant.Restaurant, error)
	UpdateRestaurant(ctx context.Context, upd restaurant.UpdateRestaurantModel, actor role.Actor) (restaurant.Restaurant, error)
	ListRestaurants(ctx context.Context, ownerID int64) ([]restaurant.Restaurant, error)
	ListMenu(ctx context.Context, restaurantID int64) ([]menuitem.MenuItem, error)
	AddMenuItem(ctx context.Context, item menuitem.MenuItem, actor role.Actor) (menuitem.MenuItem, error)
	UpdateMenuItem(ctx context.Context, upd menuitem.UpdateMenuItemModel, actor role.Actor) (menuitem.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64, actor role.Actor) error
	SetCourierAvailability(ctx context.Context, courierID int64, available bool, actor role.Actor) error
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		return 0, errs.InvalidInput("%s must be an integer", param)
	}

	return id, nil
}

// CreateRestaurant handles restaurant registration.
func CreateRestaurant(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	var req restaurant.Restaurant
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode request body"))
		slog.Error("Error decoding request body for restaurant create", "error", err)

		return
	}

	created, err := service.CreateRestaurant(r.Context(), req, actor)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error creating restaurant", "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, created)
}

type updateRestaurantRequest struct {
	Name         *string `json:"name,omitempty"`
	Address      *string `json:"address,omitempty"`
	CuisineType  *string `json:"cuisineType,omitempty"`
	OpeningHours *string `json:"openingHours,omitempty"`
	DeliveryZone *string `json:"deliveryZone,omitempty"`
}

// UpdateRestaurant handles a partial restaurant update.
func UpdateRestaurant(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	restaurantID, err := parseID(r, "restaurantID")
	if err != nil {
		respond.Error(w, err)

		return
	}

	var req updateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode request body"))
		slog.Error("Error decoding request body for restaurant update", "error", err)

		return
	}

	updated, err := service.UpdateRestaurant(r.Context(), restaurant.UpdateRestaurantModel{
		ID:           restaurantID,
		Name:         req.Name,
		Address:      req.Address,
		CuisineType:  req.CuisineType,
		OpeningHours: req.OpeningHours,
		DeliveryZone: req.DeliveryZone,
	}, actor)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error updating restaurant", "restaurantID", restaurantID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, updated)
}

// ListRestaurants handles the owner-scoped restaurant listing.
func ListRestaurants(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	ownerID := int64(0)
	if actor.Role == role.RoleRestaurant {
		ownerID = actor.UserID
	} else if raw := r.URL.Query().Get("ownerId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Error(w, errs.InvalidInput("ownerId must be an integer"))

			return
		}
		ownerID = parsed
	}

	restaurants, err := service.ListRestaurants(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error listing restaurants", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, restaurants)
}

// ListMenu handles the menu listing for one restaurant.
func ListMenu(w http.ResponseWriter, r *http.Request, service service, _ role.Actor) {
	restaurantID, err := parseID(r, "restaurantID")
	if err != nil {
		respond.Error(w, err)

		return
	}

	menu, err := service.ListMenu(r.Context(), restaurantID)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error listing menu", "restaurantID", restaurantID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, menu)
}

// AddMenuItem handles adding a dish to a restaurant menu.
func AddMenuItem(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	restaurantID, err := parseID(r, "restaurantID")
	if err != nil {
		respond.Error(w, err)

		return
	}

	var req menuitem.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode request body"))
		slog.Error("Error decoding request body for menu item create", "error", err)

		return
	}
	req.RestaurantID = restaurantID

	created, err := service.AddMenuItem(r.Context(), req, actor)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error adding menu item", "restaurantID", restaurantID, "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, created)
}

type updateMenuItemRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"priceCents,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

// UpdateMenuItem handles a partial menu item update.
func UpdateMenuItem(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	itemID, err := parseID(r, "itemID")
	if err != nil {
		respond.Error(w, err)

		return
	}

	var req updateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode request body"))
		slog.Error("Error decoding request body for menu item update", "error", err)

		return
	}

	updated, err := service.UpdateMenuItem(r.Context(), menuitem.UpdateMenuItemModel{
		ID:          itemID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Available:   req.Available,
	}, actor)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error updating menu item", "itemID", itemID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, updated)
}

// DeleteMenuItem handles removing a dish from a menu.
func DeleteMenuItem(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	itemID, err := parseID(r, "itemID")
	if err != nil {
		respond.Error(w, err)

		return
	}

	if err := service.DeleteMenuItem(r.Context(), itemID, actor); err != nil {
		respond.Error(w, err)
		slog.Error("Error deleting menu item", "itemID", itemID, "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setAvailabilityRequest struct {
	Available *bool `json:"available"`
}

// SetCourierAvailability handles a courier availability toggle.
func SetCourierAvailability(w http.ResponseWriter, r *http.Request, service service, actor role.Actor) {
	courierID, err := parseID(r, "courierID")
	if err != nil {
		respond.Error(w, err)

		return
	}

	var req setAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, errs.InvalidInput("failed to decode request body"))
		slog.Error("Error decoding request body for availability toggle", "error", err)

		return
	}

	if req.Available == nil {
		respond.Error(w, errs.InvalidInput("available is required"))

		return
	}

	if err := service.SetCourierAvailability(r.Context(), courierID, *req.Available, actor); err != nil {
		respond.Error(w, err)
		slog.Error("Error updating courier availability", "courierID", courierID, "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
