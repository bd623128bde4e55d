package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-series/internal/application/dto"
	appinv "github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// saleService lo implementa *inventory.SaleUseCase.
type saleService interface {
	SellSerial(ctx context.Context, saleID, unitID, userID string) (*entity.SerialUnit, error)
	SellQuantity(ctx context.Context, saleID string, line appinv.SaleLine, userID string) ([]*entity.InventoryMovement, error)
	CancelSale(ctx context.Context, in appinv.CancelSaleInput) error
}

// SaleHandler maneja el efecto en inventario de las ventas (protegido).
type SaleHandler struct {
	sales saleService
}

// NewSaleHandler construye el handler.
func NewSaleHandler(sales saleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// SellSerial godoc
// @Summary      Vender una serie
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.SellSerialRequest  true  "serie vendida"
// @Success      200   {object}  dto.SerialResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/serials [post]
func (h *SaleHandler) SellSerial(c *fiber.Ctx) error {
	var in dto.SellSerialRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	unit, err := h.sales.SellSerial(c.UserContext(), c.Params("id"), in.SerialID, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSerialResponse(unit))
}

// SellQuantity godoc
// @Summary      Vender cantidad de un producto sin serie
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID de la venta"
// @Param        body  body  dto.SaleLineDTO  true  "línea de venta"
// @Success      201   {array}   dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/lines [post]
func (h *SaleHandler) SellQuantity(c *fiber.Ctx) error {
	var in dto.SaleLineDTO
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	list, err := h.sales.SellQuantity(c.UserContext(), c.Params("id"), appinv.SaleLine{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		LotNumber:   in.LotNumber,
	}, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponses(list))
}

// Cancel godoc
// @Summary      Cancelar una venta
// @Description  Las series vuelven a stock y las líneas sin serie reingresan.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.CancelSaleRequest  true  "líneas sin serie"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	lines := make([]appinv.SaleLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, appinv.SaleLine{
			ProductID: l.ProductID, WarehouseID: l.WarehouseID, Quantity: l.Quantity, LotNumber: l.LotNumber,
		})
	}
	if err := h.sales.CancelSale(c.UserContext(), appinv.CancelSaleInput{
		SaleID: c.Params("id"),
		Lines:  lines,
		UserID: GetUserID(c),
	}); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
