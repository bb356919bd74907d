package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comerciogt/pagos-gateway/internal/application"
	"github.com/comerciogt/pagos-gateway/internal/application/services"
	"github.com/comerciogt/pagos-gateway/internal/config"
	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/persistence"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/persistence/postgres"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers/paypal"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers/recurrente"
	"github.com/comerciogt/pagos-gateway/internal/infrastructure/providers/stripe"
	"github.com/comerciogt/pagos-gateway/internal/interfaces/rest/handlers"
	"github.com/comerciogt/pagos-gateway/internal/interfaces/rest/middleware"
	"github.com/comerciogt/pagos-gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting pagos gateway",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	cambio, err := domain.NuevoTipoCambio(cfg.Cambio.TasaGTQUSD, cfg.Cambio.Tolerancia)
	if err != nil {
		logger.Error("invalid exchange configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := persistence.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pagoRepo := postgres.NewPagoRepository(db.Pool)
	eventoRepo := postgres.NewEventoRepository(db.Pool)
	ordenRepo := postgres.NewOrdenRepository(db.Pool)

	registry := application.NewRegistry()
	if err := registrarProveedores(cfg, registry, logger); err != nil {
		logger.Error("failed to configure providers", "error", err)
		os.Exit(1)
	}

	crearService := services.NewCrearPagoService(ordenRepo, pagoRepo, registry, cambio, logger)
	capturaService := services.NewCapturaService(pagoRepo, registry, logger)
	webhookService := services.NewWebhookService(pagoRepo, eventoRepo, registry, logger)
	reembolsoService := services.NewReembolsoService(pagoRepo, registry, logger)
	consultaService := services.NewConsultaService(pagoRepo)

	h := handlers.NewPagoHandler(
		crearService,
		capturaService,
		webhookService,
		reembolsoService,
		consultaService,
		logger,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	reconciler := worker.NewReconciler(pagoRepo, registry, cfg.Worker, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reconciler.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// registrarProveedores builds an adapter per configured provider and binds
// it to the payment methods it settles. A provider with no credentials at
// all is skipped; a provider with partial credentials aborts startup so a
// typo never silently disables payments.
func registrarProveedores(cfg *config.Config, registry *application.Registry, logger *slog.Logger) error {
	if cfg.Paypal.ClientID != "" || cfg.Paypal.ClientSecret != "" || cfg.Paypal.WebhookID != "" {
		adapter, err := paypal.NewAdapter(cfg.Paypal, cfg.Frontend.URL)
		if err != nil {
			return err
		}
		registry.Registrar(providers.NewRetryProveedor(adapter, cfg.Retry), domain.MetodoPaypal)
		logger.Info("provider enabled", "proveedor", "paypal")
	} else {
		logger.Warn("provider disabled, no credentials", "proveedor", "paypal")
	}

	if cfg.Stripe.SecretKey != "" || cfg.Stripe.WebhookSecret != "" {
		adapter, err := stripe.NewAdapter(cfg.Stripe, cfg.Frontend.URL)
		if err != nil {
			return err
		}
		registry.Registrar(providers.NewRetryProveedor(adapter, cfg.Retry), domain.MetodoTarjetaInternacional)
		logger.Info("provider enabled", "proveedor", "stripe")
	} else {
		logger.Warn("provider disabled, no credentials", "proveedor", "stripe")
	}

	if cfg.Recurrente.PublicKey != "" || cfg.Recurrente.SecretKey != "" || cfg.Recurrente.WebhookSecret != "" {
		adapter, err := recurrente.NewAdapter(cfg.Recurrente, cfg.Frontend.URL)
		if err != nil {
			return err
		}
		registry.Registrar(providers.NewRetryProveedor(adapter, cfg.Retry),
			domain.MetodoRecurrente, domain.MetodoTarjetaGT)
		logger.Info("provider enabled", "proveedor", "recurrente")
	} else {
		logger.Warn("provider disabled, no credentials", "proveedor", "recurrente")
	}

	return nil
}
