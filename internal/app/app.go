package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/food-delivery/internal/dal/postgres"
	"github.com/corray333/food-delivery/internal/dal/rabbitmq"
	"github.com/corray333/food-delivery/internal/dal/repositories/events"
	outboxrepo "github.com/corray333/food-delivery/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/food-delivery/internal/otel"
	"github.com/corray333/food-delivery/internal/service/services/catalogsvc"
	"github.com/corray333/food-delivery/internal/service/services/ordersvc"
	"github.com/corray333/food-delivery/internal/service/services/reportsvc"
	httptransport "github.com/corray333/food-delivery/internal/transport/http"
	"github.com/corray333/food-delivery/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	reportSvc      *reportsvc.ReportService
	catalogSvc     *catalogsvc.CatalogService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outbox.Worker
	otelController *otel.OtelController
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	eventsRepo := events.NewEventsRabbitMQRepository(rabbitClient)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithEventPublisher(eventsRepo),
	)
	reportSvc := reportsvc.MustNewReportService(
		reportsvc.WithPostgresClient(postgresClient),
	)
	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithPostgresClient(postgresClient),
	)

	outboxWorker := outbox.NewWorker(
		outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	transport := httptransport.NewHTTPTransport(orderSvc, reportSvc, catalogSvc)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		reportSvc:      reportSvc,
		catalogSvc:     catalogSvc,
		transport:      transport,
		outboxWorker:   outboxWorker,
		otelController: otelController,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()
	a.outboxWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
