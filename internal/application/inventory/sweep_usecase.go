package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/repository"
	"github.com/jhoicas/inventario-series/pkg/logger"
	"github.com/jhoicas/inventario-series/pkg/metrics"
)

// SweepOptions parámetros del barrido de conciliación.
type SweepOptions struct {
	ProductID  string // vacío = todos los productos con serie
	Fix        bool   // corrige el resumen de producto descuadrado
	ReportPath string // vacío = sin reporte
}

// ProductSweepResult resultado de conciliar un producto.
type ProductSweepResult struct {
	ProductID string
	Repairs   []inventory.Repair
	Err       error
}

// SweepReport resumen de un barrido.
type SweepReport struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	Products      []ProductSweepResult
	Discrepancies []repository.SummaryDiscrepancy
	Fixed         bool
}

// RepairCount total de filas corregidas o creadas.
func (r *SweepReport) RepairCount() int {
	n := 0
	for _, p := range r.Products {
		n += len(p.Repairs)
	}
	return n
}

// SweepConfig configuración fija del barrido.
type SweepConfig struct {
	LockKey string
	LockTTL time.Duration
}

// SweepUseCase concilia todos los productos con serie y revisa el resumen de stock por producto.
// Un candado distribuido evita dos barridos simultáneos; el error de un producto no detiene el resto.
type SweepUseCase struct {
	txRunner   TxRunner
	reconciler *ReconcileUseCase
	locker     Locker
	report     SweepReportWriter
	cfg        SweepConfig
	log        *logger.Logger
	metrics    *metrics.ReconcileMetrics
	now        func() time.Time
}

// NewSweepUseCase construye el caso de uso. locker y report pueden ser nil.
func NewSweepUseCase(
	txRunner TxRunner,
	reconciler *ReconcileUseCase,
	locker Locker,
	report SweepReportWriter,
	cfg SweepConfig,
	log *logger.Logger,
	m *metrics.ReconcileMetrics,
) *SweepUseCase {
	if cfg.LockKey == "" {
		cfg.LockKey = "inventario:reconciliar"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &SweepUseCase{
		txRunner:   txRunner,
		reconciler: reconciler,
		locker:     locker,
		report:     report,
		cfg:        cfg,
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
}

// Run ejecuta el barrido. Devuelve el reporte aunque haya errores por producto;
// el error agrupa todos los fallos.
func (uc *SweepUseCase) Run(ctx context.Context, opts SweepOptions) (report *SweepReport, err error) {
	started := uc.now()
	if uc.locker != nil {
		lock, lerr := uc.locker.Obtain(ctx, uc.cfg.LockKey, uc.cfg.LockTTL)
		if lerr != nil {
			if errors.Is(lerr, domain.ErrSweepInProgress) {
				uc.metrics.ObserveSweep(metrics.SweepSkipped, 0)
			}
			return nil, lerr
		}
		defer func() {
			if rerr := lock.Release(context.WithoutCancel(ctx)); rerr != nil {
				uc.log.Warn().Err(rerr).Str("key", uc.cfg.LockKey).Msg("liberar candado de conciliación")
			}
		}()
	}
	defer func() {
		result := metrics.SweepOK
		if err != nil {
			result = metrics.SweepFailed
		}
		uc.metrics.ObserveSweep(result, uc.now().Sub(started))
	}()

	report = &SweepReport{StartedAt: started, Fixed: opts.Fix}

	ids := []string{opts.ProductID}
	if opts.ProductID == "" {
		err = uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
			var lerr error
			ids, lerr = repos.Products.ListSerializedIDs(ctx)
			return lerr
		})
		if err != nil {
			return nil, fmt.Errorf("listar productos con serie: %w", err)
		}
	}

	var errs error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		plan, perr := uc.reconciler.Reconcile(ctx, id)
		res := ProductSweepResult{ProductID: id, Repairs: plan.Repairs}
		if perr != nil {
			res.Err = perr
			errs = multierr.Append(errs, fmt.Errorf("producto %s: %w", id, perr))
			uc.log.Error().Err(perr).Str("product_id", id).Msg("conciliación de producto falló")
		}
		report.Products = append(report.Products, res)
	}

	derr := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		found, err := repos.Products.FindSummaryDiscrepancies(ctx)
		if err != nil {
			return err
		}
		report.Discrepancies = found
		if !opts.Fix {
			return nil
		}
		for _, d := range found {
			if err := repos.Products.UpdateStock(ctx, d.ProductID, d.RowsTotal); err != nil {
				return err
			}
			uc.log.Warn().
				Str("product_id", d.ProductID).
				Int64("before", d.Summary).
				Int64("after", d.RowsTotal).
				Msg("resumen de stock de producto corregido")
		}
		return nil
	})
	if derr != nil {
		errs = multierr.Append(errs, fmt.Errorf("resumen de productos: %w", derr))
	}

	report.FinishedAt = uc.now()
	if opts.ReportPath != "" && uc.report != nil {
		if werr := uc.report.Write(opts.ReportPath, report); werr != nil {
			errs = multierr.Append(errs, fmt.Errorf("reporte: %w", werr))
		}
	}

	uc.log.Info().
		Int("products", len(report.Products)).
		Int("repairs", report.RepairCount()).
		Int("discrepancies", len(report.Discrepancies)).
		Bool("fix", opts.Fix).
		Msg("conciliación finalizada")
	return report, errs
}
