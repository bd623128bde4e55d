package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-series/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-series/internal/infrastructure/report"
	httpRouter "github.com/jhoicas/inventario-series/internal/interfaces/http"
	"github.com/jhoicas/inventario-series/pkg/config"
	"github.com/jhoicas/inventario-series/pkg/logger"
	"github.com/jhoicas/inventario-series/pkg/metrics"
	"github.com/jhoicas/inventario-series/pkg/migrate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.App.Env == "development" {
		if err := migrate.Up(ctx, postgres.OpenDB(pool)); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reconcileMetrics := metrics.NewReconcileMetrics(registry)

	txRunner := postgres.NewTxRunner(pool)
	reconcileUC := inventory.NewReconcileUseCase(txRunner, log.Component("conciliacion"), reconcileMetrics)
	movementUC := inventory.NewMovementUseCase(txRunner, reconcileUC, log.Component("movimientos"))
	serialUC := inventory.NewSerialUseCase(txRunner, movementUC, reconcileUC, log.Component("series"))
	purchaseUC := inventory.NewPurchaseUseCase(txRunner, movementUC, serialUC, reconcileUC, log.Component("compras"))
	saleUC := inventory.NewSaleUseCase(txRunner, movementUC, serialUC, log.Component("ventas"))

	// Sin Redis el barrido corre sin candado distribuido.
	var locker inventory.Locker
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: barrido de conciliación sin candado distribuido")
	}
	xlsx := report.NewXLSXWriter()
	sweepUC := inventory.NewSweepUseCase(txRunner, reconcileUC, locker, xlsx, inventory.SweepConfig{
		LockKey: cfg.Reconcile.LockKey,
		LockTTL: cfg.Reconcile.LockTTL,
	}, log.Component("barrido"), reconcileMetrics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:    cfg.App.Name,
		Movements:  movementUC,
		Reconciler: reconcileUC,
		Sweeper:    sweepUC,
		Report:     xlsx,
		Serials:    serialUC,
		Purchases:  purchaseUC,
		Sales:      saleUC,
		JWTSecret:  cfg.JWT.Secret,
		Gatherer:   registry,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
