package http

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-series/internal/application/dto"
	appinv "github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
)

// movementService lo implementa *inventory.MovementUseCase.
type movementService interface {
	Entrada(ctx context.Context, productID string, qty int64, mc appinv.MovementContext) ([]*entity.InventoryMovement, error)
	Salida(ctx context.Context, productID string, qty int64, mc appinv.MovementContext) ([]*entity.InventoryMovement, error)
	ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}

// reconcileService lo implementa *inventory.ReconcileUseCase.
type reconcileService interface {
	Reconcile(ctx context.Context, productID string) (inventory.ReconciliationPlan, error)
}

// sweepService lo implementa *inventory.SweepUseCase.
type sweepService interface {
	Run(ctx context.Context, opts appinv.SweepOptions) (*appinv.SweepReport, error)
}

// reportEncoder lo implementa *report.XLSXWriter.
type reportEncoder interface {
	Encode(out io.Writer, report *appinv.SweepReport) error
}

// InventoryHandler maneja entradas, salidas, historial y conciliación (protegido).
type InventoryHandler struct {
	movements  movementService
	reconciler reconcileService
	sweeper    sweepService
	report     reportEncoder
}

// NewInventoryHandler construye el handler. report puede ser nil (sin exportación XLSX).
func NewInventoryHandler(movements movementService, reconciler reconcileService, sweeper sweepService, report reportEncoder) *InventoryHandler {
	return &InventoryHandler{movements: movements, reconciler: reconciler, sweeper: sweeper, report: report}
}

// Entrada godoc
// @Summary      Registrar entrada de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "producto, almacén, cantidad y contexto opcional"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/entradas [post]
func (h *InventoryHandler) Entrada(c *fiber.Ctx) error {
	return h.record(c, h.movements.Entrada)
}

// Salida godoc
// @Summary      Registrar salida de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "producto, almacén, cantidad y contexto opcional"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/salidas [post]
func (h *InventoryHandler) Salida(c *fiber.Ctx) error {
	return h.record(c, h.movements.Salida)
}

type recordFunc func(ctx context.Context, productID string, qty int64, mc appinv.MovementContext) ([]*entity.InventoryMovement, error)

func (h *InventoryHandler) record(c *fiber.Ctx, fn recordFunc) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.MovementRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	mc, err := appinv.ParseMovementContext(in.ContextMap(userID))
	if err != nil {
		return writeError(c, err)
	}
	list, err := fn(c.UserContext(), in.ProductID, in.Quantity, mc)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponses(list))
}

// ListMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite (1-100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page := q.Page()
	from, err := parseDate(q.From)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser YYYY-MM-DD"})
	}
	to, err := parseDate(q.To)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser YYYY-MM-DD"})
	}
	if to != nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	list, err := h.movements.ListMovements(c.UserContext(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"movements": toMovementResponses(list),
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(list)},
	})
}

// Reconcile godoc
// @Summary      Conciliar stock de un producto con series
// @Description  Recalcula el stock por almacén desde las series en stock y corrige las filas descuadradas.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	productID := c.Params("id")
	plan, err := h.reconciler.Reconcile(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{
		ProductID: productID,
		Total:     plan.Total,
		Repairs:   toRepairDTOs(plan.Repairs),
	})
}

// Sweep godoc
// @Summary      Barrido de conciliación
// @Description  Concilia todos los productos con serie (o uno) y revisa el stock resumen.
//
//	Con format=xlsx devuelve el reporte como libro de Excel.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body    body   dto.SweepRequest  false  "product_id opcional, fix"
// @Param        format  query  string            false  "json (defecto) o xlsx"
// @Success      200  {object}  dto.SweepResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) Sweep(c *fiber.Ctx) error {
	var in dto.SweepRequest
	if len(c.Body()) > 0 {
		if ok, err := bindAndValidate(c, &in); !ok {
			return err
		}
	}
	report, err := h.sweeper.Run(c.UserContext(), appinv.SweepOptions{ProductID: in.ProductID, Fix: in.Fix})
	if err != nil && report == nil {
		return writeError(c, err)
	}
	if c.Query("format") == "xlsx" && h.report != nil {
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=conciliacion-%s.xlsx", report.StartedAt.Format("20060102-150405")))
		return h.report.Encode(c.Response().BodyWriter(), report)
	}
	return c.JSON(toSweepResponse(report))
}
