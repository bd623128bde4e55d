// Command reconcile concilia el stock de los productos con serie contra sus unidades en stock.
//
//	reconcile [-product ID] [-fix] [-report conciliacion.xlsx]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-series/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-series/internal/infrastructure/report"
	"github.com/jhoicas/inventario-series/pkg/config"
	"github.com/jhoicas/inventario-series/pkg/logger"
)

func main() {
	productID := flag.String("product", "", "conciliar solo este producto (vacío = todos los productos con serie)")
	fix := flag.Bool("fix", false, "corregir el stock resumen de productos descuadrados")
	reportPath := flag.String("report", "", "ruta del reporte XLSX (vacío = RECONCILE_REPORT_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var locker inventory.Locker
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb)
	}

	txRunner := postgres.NewTxRunner(pool)
	reconcileUC := inventory.NewReconcileUseCase(txRunner, log, nil)
	sweepUC := inventory.NewSweepUseCase(txRunner, reconcileUC, locker, report.NewXLSXWriter(), inventory.SweepConfig{
		LockKey: cfg.Reconcile.LockKey,
		LockTTL: cfg.Reconcile.LockTTL,
	}, log, nil)

	path := *reportPath
	if path == "" {
		path = cfg.Reconcile.ReportPath
	}
	rep, err := sweepUC.Run(ctx, inventory.SweepOptions{ProductID: *productID, Fix: *fix, ReportPath: path})
	if rep != nil {
		fmt.Printf("productos: %d  filas reparadas: %d  descuadres de resumen: %d\n",
			len(rep.Products), rep.RepairCount(), len(rep.Discrepancies))
		for _, d := range rep.Discrepancies {
			fmt.Printf("  %s (%s): resumen=%d almacenes=%d diferencia=%d\n", d.SKU, d.ProductID, d.Summary, d.RowsTotal, d.Difference)
		}
		if path != "" {
			fmt.Println("reporte:", path)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "conciliación con errores: %v\n", err)
		os.Exit(1)
	}
}
