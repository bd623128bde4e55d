package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-series/internal/application/dto"
	"github.com/jhoicas/inventario-series/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings en orden de evaluación; el primero que coincide con errors.Is gana.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrDuplicateSerial, fiber.StatusConflict, "DUPLICATE_SERIAL"},
	{domain.ErrSoldSerials, fiber.StatusConflict, "SOLD_SERIALS"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrSweepInProgress, fiber.StatusConflict, "SWEEP_IN_PROGRESS"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInactiveWarehouse, fiber.StatusUnprocessableEntity, "INACTIVE_WAREHOUSE"},
	{domain.ErrInvalidTransition, fiber.StatusUnprocessableEntity, "INVALID_TRANSITION"},
	{domain.ErrSerialCountMismatch, fiber.StatusBadRequest, "SERIAL_COUNT_MISMATCH"},
	{domain.ErrMissingLotNumber, fiber.StatusBadRequest, "MISSING_LOT_NUMBER"},
	{domain.ErrMissingProduct, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrMissingWarehouse, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNoOuterTransaction, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
}

// writeError traduce errores de dominio a dto.ErrorResponse. Lo no reconocido es 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
