package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-series/internal/application/dto"
	appinv "github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// purchaseService lo implementa *inventory.PurchaseUseCase.
type purchaseService interface {
	ReceiveLine(ctx context.Context, in appinv.ReceiveLineInput) ([]*entity.InventoryMovement, error)
	EditLineQuantity(ctx context.Context, in appinv.EditLineInput) ([]*entity.InventoryMovement, error)
	Cancel(ctx context.Context, in appinv.CancelPurchaseInput) ([]*entity.InventoryMovement, error)
}

// PurchaseHandler maneja el efecto en inventario de las compras (protegido).
type PurchaseHandler struct {
	purchases purchaseService
	serials   serialService
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(purchases purchaseService, serials serialService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, serials: serials}
}

// ReceiveLine godoc
// @Summary      Recibir una línea de compra
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la compra"
// @Param        body  body  dto.ReceiveLineRequest  true  "producto, almacén, cantidad, series o lote"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/receipts [post]
func (h *PurchaseHandler) ReceiveLine(c *fiber.Ctx) error {
	var in dto.ReceiveLineRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	expires, err := parseDate(in.ExpiresAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "expires_at debe ser YYYY-MM-DD"})
	}
	list, err := h.purchases.ReceiveLine(c.UserContext(), appinv.ReceiveLineInput{
		PurchaseID:  c.Params("id"),
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Serials:     in.Serials,
		LotNumber:   in.LotNumber,
		ExpiresAt:   expires,
		UnitCost:    in.UnitCost,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponses(list))
}

// EditLine godoc
// @Summary      Cambiar la cantidad de una línea de compra sin series
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la compra"
// @Param        body  body  dto.EditLineRequest  true  "cantidades anterior y nueva"
// @Success      200   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/lines [patch]
func (h *PurchaseHandler) EditLine(c *fiber.Ctx) error {
	var in dto.EditLineRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	list, err := h.purchases.EditLineQuantity(c.UserContext(), appinv.EditLineInput{
		PurchaseID:  c.Params("id"),
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		OldQuantity: in.OldQuantity,
		NewQuantity: in.NewQuantity,
		LotNumber:   in.LotNumber,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponses(list))
}

// ReplaceSerials godoc
// @Summary      Reemplazar la lista de series de un producto en una compra
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la compra"
// @Param        body  body  dto.ReplaceSerialsRequest  true  "lista completa de series"
// @Success      200   {object}  dto.ReplaceSerialsResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/serials [put]
func (h *PurchaseHandler) ReplaceSerials(c *fiber.Ctx) error {
	var in dto.ReplaceSerialsRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	res, err := h.serials.ReplaceForPurchase(c.UserContext(), appinv.ReplaceSerialsInput{
		PurchaseID:  c.Params("id"),
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Serials:     in.Serials,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReplaceSerialsResponse{Added: res.Added, Removed: res.Removed, NetDelta: res.NetDelta})
}

// Cancel godoc
// @Summary      Cancelar una compra
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la compra"
// @Param        body  body  dto.CancelPurchaseRequest  true  "líneas de la compra"
// @Success      200   {array}   dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelPurchaseRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	lines := make([]appinv.PurchaseLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, appinv.PurchaseLine{ProductID: l.ProductID, WarehouseID: l.WarehouseID, Quantity: l.Quantity})
	}
	list, err := h.purchases.Cancel(c.UserContext(), appinv.CancelPurchaseInput{
		PurchaseID: c.Params("id"),
		Lines:      lines,
		UserID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponses(list))
}
