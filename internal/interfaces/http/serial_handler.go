package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-series/internal/application/dto"
	appinv "github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// serialService lo implementa *inventory.SerialUseCase.
type serialService interface {
	Register(ctx context.Context, in appinv.RegisterSerialInput) (*entity.SerialUnit, error)
	ChangeState(ctx context.Context, unitID string, in appinv.ChangeStateInput) (*entity.SerialUnit, error)
	Transfer(ctx context.Context, unitID, toWarehouseID string, opts appinv.TransferOptions) (*entity.SerialUnit, error)
	Delete(ctx context.Context, unitID string, opts appinv.DeleteOptions) error
	Restore(ctx context.Context, unitID string, opts appinv.DeleteOptions) (*entity.SerialUnit, error)
	ReplaceForPurchase(ctx context.Context, in appinv.ReplaceSerialsInput) (appinv.ReplaceSerialsResult, error)
}

// SerialHandler maneja el ciclo de vida de las unidades con serie (protegido).
type SerialHandler struct {
	serials serialService
}

// NewSerialHandler construye el handler.
func NewSerialHandler(serials serialService) *SerialHandler {
	return &SerialHandler{serials: serials}
}

// Register godoc
// @Summary      Dar de alta una serie
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterSerialRequest  true  "producto, almacén, serie, estado"
// @Success      201   {object}  dto.SerialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/serials [post]
func (h *SerialHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterSerialRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	unit, err := h.serials.Register(c.UserContext(), appinv.RegisterSerialInput{
		ProductID:    in.ProductID,
		WarehouseID:  in.WarehouseID,
		SerialNumber: in.SerialNumber,
		State:        in.State,
		UserID:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSerialResponse(unit))
}

// ChangeState godoc
// @Summary      Cambiar el estado de una serie
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la serie"
// @Param        body  body  dto.ChangeSerialStateRequest  true  "estado nuevo"
// @Success      200   {object}  dto.SerialResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/serials/{id}/state [patch]
func (h *SerialHandler) ChangeState(c *fiber.Ctx) error {
	var in dto.ChangeSerialStateRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	unit, err := h.serials.ChangeState(c.UserContext(), c.Params("id"), appinv.ChangeStateInput{
		State:  in.State,
		SaleID: in.SaleID,
		UserID: GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSerialResponse(unit))
}

// Transfer godoc
// @Summary      Traspasar una serie a otro almacén
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la serie"
// @Param        body  body  dto.TransferSerialRequest  true  "almacén destino"
// @Success      200   {object}  dto.SerialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/serials/{id}/transfer [post]
func (h *SerialHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferSerialRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	opts := appinv.TransferOptions{UserID: GetUserID(c)}
	if in.TransferID != "" {
		opts.Reference = entity.TransferRef{ID: in.TransferID}
	}
	unit, err := h.serials.Transfer(c.UserContext(), c.Params("id"), in.WarehouseID, opts)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSerialResponse(unit))
}

// Delete godoc
// @Summary      Eliminar (lógicamente) una serie
// @Tags         serials
// @Security     Bearer
// @Param        id  path  string  true  "ID de la serie"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/serials/{id} [delete]
func (h *SerialHandler) Delete(c *fiber.Ctx) error {
	if err := h.serials.Delete(c.UserContext(), c.Params("id"), appinv.DeleteOptions{UserID: GetUserID(c)}); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Restore godoc
// @Summary      Restaurar una serie eliminada
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la serie"
// @Success      200  {object}  dto.SerialResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/serials/{id}/restore [post]
func (h *SerialHandler) Restore(c *fiber.Ctx) error {
	unit, err := h.serials.Restore(c.UserContext(), c.Params("id"), appinv.DeleteOptions{UserID: GetUserID(c)})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSerialResponse(unit))
}
