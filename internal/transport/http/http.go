package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/corray333/food-delivery/internal/service/models/menuitem"
	"github.com/corray333/food-delivery/internal/service/models/order"
	"github.com/corray333/food-delivery/internal/service/models/report"
	"github.com/corray333/food-delivery/internal/service/models/restaurant"
	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/corray333/food-delivery/internal/service/services/ordersvc"
	cancelorder "github.com/corray333/food-delivery/internal/transport/http/cancel_order"
	"github.com/corray333/food-delivery/internal/transport/http/catalog"
	getorder "github.com/corray333/food-delivery/internal/transport/http/get_order"
	listorders "github.com/corray333/food-delivery/internal/transport/http/list_orders"
	placeorder "github.com/corray333/food-delivery/internal/transport/http/place_order"
	"github.com/corray333/food-delivery/internal/transport/http/reports"
	rescheduleorder "github.com/corray333/food-delivery/internal/transport/http/reschedule_order"
	"github.com/corray333/food-delivery/internal/transport/http/respond"
	transitionstatus "github.com/corray333/food-delivery/internal/transport/http/transition_status"
	"github.com/corray333/food-delivery/pkg/errs"
	"github.com/corray333/food-delivery/pkg/http/middleware/auth"
	"github.com/corray333/food-delivery/pkg/http/middleware/trace"
	"github.com/corray333/food-delivery/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type orderService interface {
	PlaceOrder(ctx context.Context, req ordersvc.PlaceOrderRequest) (order.Order, error)
	GetOrder(ctx context.Context, orderID int64) (order.Order, error)
	ListOrders(ctx context.Context, q ordersvc.ListOrdersQuery) ([]order.Order, int64, error)
	TransitionStatus(ctx context.Context, orderID int64, to order.Status, actor role.Actor) (order.Order, error)
	CancelOrder(ctx context.Context, orderID int64, actor role.Actor) (order.Order, error)
	RescheduleOrder(ctx context.Context, orderID int64, deliveryTime time.Time, actor role.Actor) (order.Order, error)
}

type reportService interface {
	PopularRestaurants(ctx context.Context, limit int) ([]report.RestaurantOrderCount, error)
	AverageDeliveryTime(ctx context.Context, rng report.DateRange) (float64, error)
	OrderTrends(ctx context.Context, interval report.TrendInterval, rng report.DateRange) ([]report.TrendBucket, error)
	OrderStatusHistogram(ctx context.Context) ([]report.StatusCount, error)
	PlatformHealth(ctx context.Context) (report.PlatformHealth, error)
}

type catalogService interface {
	CreateRestaurant(ctx context.Context, r restaurant.Restaurant, actor role.Actor) (restaurant.Restaurant, error)
	UpdateRestaurant(ctx context.Context, upd restaurant.UpdateRestaurantModel, actor role.Actor) (restaurant.Restaurant, error)
	ListRestaurants(ctx context.Context, ownerID int64) ([]restaurant.Restaurant, error)
	ListMenu(ctx context.Context, restaurantID int64) ([]menuitem.MenuItem, error)
	AddMenuItem(ctx context.Context, item menuitem.MenuItem, actor role.Actor) (menuitem.MenuItem, error)
	UpdateMenuItem(ctx context.Context, upd menuitem.UpdateMenuItemModel, actor role.Actor) (menuitem.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64, actor role.Actor) error
	SetCourierAvailability(ctx context.Context, courierID int64, available bool, actor role.Actor) error
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	orders   orderService
	reports  reportService
	catalogs catalogService
}

func NewHTTPTransport(orders orderService, reports reportService, catalogs catalogService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		orders:   orders,
		reports:  reports,
		catalogs: catalogs,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// authedHandler is a request handler that requires an authenticated
// actor in the context.
type authedHandler func(w http.ResponseWriter, r *http.Request, actor role.Actor)

func withActor(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFromContext(r.Context())
		if !ok {
			respond.Error(w, errs.Unauthenticated("missing authenticated actor"))

			return
		}

		next(w, r, actor)
	}
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	authMiddleware := auth.NewAuthMiddleware(os.Getenv("JWT_SECRET"))

	h.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", withActor(h.placeOrder))
				r.Get("/", withActor(h.listOrders))
				r.Get("/{orderID}", withActor(h.getOrder))
				r.Patch("/{orderID}/status", withActor(h.transitionStatus))
				r.Post("/{orderID}/cancel", withActor(h.cancelOrder))
				r.Patch("/{orderID}/schedule", withActor(h.rescheduleOrder))
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/popular-restaurants", withActor(h.popularRestaurants))
				r.Get("/average-delivery-time", withActor(h.averageDeliveryTime))
				r.Get("/order-trends", withActor(h.orderTrends))
				r.Get("/status-histogram", withActor(h.orderStatusHistogram))
				r.Get("/platform-health", withActor(h.platformHealth))
			})

			r.Route("/restaurants", func(r chi.Router) {
				r.Post("/", withActor(h.createRestaurant))
				r.Get("/", withActor(h.listRestaurants))
				r.Patch("/{restaurantID}", withActor(h.updateRestaurant))
				r.Get("/{restaurantID}/menu", withActor(h.listMenu))
				r.Post("/{restaurantID}/menu", withActor(h.addMenuItem))
			})

			r.Route("/couriers", func(r chi.Router) {
				r.Patch("/{courierID}/availability", withActor(h.setCourierAvailability))
			})

			r.Route("/menu-items", func(r chi.Router) {
				r.Patch("/{itemID}", withActor(h.updateMenuItem))
				r.Delete("/{itemID}", withActor(h.deleteMenuItem))
			})
		})
	})
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	placeorder.PlaceOrder(w, r, h.orders, actor)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	getorder.GetOrder(w, r, h.orders, actor)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	listorders.ListOrders(w, r, h.orders, actor)
}

func (h *HTTPTransport) transitionStatus(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	transitionstatus.TransitionStatus(w, r, h.orders, actor)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	cancelorder.CancelOrder(w, r, h.orders, actor)
}

func (h *HTTPTransport) rescheduleOrder(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	rescheduleorder.RescheduleOrder(w, r, h.orders, actor)
}

func (h *HTTPTransport) popularRestaurants(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	reports.PopularRestaurants(w, r, h.reports, actor)
}

func (h *HTTPTransport) averageDeliveryTime(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	reports.AverageDeliveryTime(w, r, h.reports, actor)
}

func (h *HTTPTransport) orderTrends(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	reports.OrderTrends(w, r, h.reports, actor)
}

func (h *HTTPTransport) orderStatusHistogram(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	reports.OrderStatusHistogram(w, r, h.reports, actor)
}

func (h *HTTPTransport) platformHealth(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	reports.PlatformHealth(w, r, h.reports, actor)
}

func (h *HTTPTransport) createRestaurant(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	catalog.CreateRestaurant(w, r, h.catalogs, actor)
}

func (h *HTTPTransport) updateRestaurant(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	catalog.UpdateRestaurant(w, r, h.catalogs, actor)
}

func (h *HTTPTransport) listRestaurants(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	catalog.ListRestaurants(w, r, h.catalogs, actor)
}

func (h *HTTPTransport) listMenu(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	catalog.ListMenu(w, r, h.catalogs, actor)
}

func (h *HTTPTransport) addMenuItem(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	catalog.AddMenuItem(w, r, h.catalogs, actor)
}

func (h *HTTPTransport) updateMenuItem(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	catalog.UpdateMenuItem(w, r, h.catalogs, actor)
}

func (h *HTTPTransport) deleteMenuItem(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	catalog.DeleteMenuItem(w, r, h.catalogs, actor)
}

func (h *HTTPTransport) setCourierAvailability(w http.ResponseWriter, r *http.Request, actor role.Actor) {
	catalog.SetCourierAvailability(w, r, h.catalogs, actor)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
