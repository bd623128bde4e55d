package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Validación de movimientos.
	ErrMissingProduct     = errors.New("producto requerido")
	ErrMissingWarehouse   = errors.New("almacén requerido")
	ErrInactiveWarehouse  = errors.New("el almacén especificado no existe o no está activo")
	ErrInvalidQuantity    = errors.New("la cantidad del movimiento debe ser mayor que cero")
	ErrNoOuterTransaction = errors.New("skip_transaction requiere una transacción activa")
	ErrMissingLotNumber   = errors.New("número de lote requerido para productos que vencen")

	// Series.
	ErrDuplicateSerial     = errors.New("la serie ya existe para este producto")
	ErrInvalidTransition   = errors.New("transición de estado de serie inválida")
	ErrSerialCountMismatch = errors.New("la cantidad de series no coincide con la cantidad recibida")
	ErrSoldSerials         = errors.New("la compra tiene series que ya no están en stock")

	// Barrido de conciliación.
	ErrSweepInProgress = errors.New("ya hay una conciliación en curso")
)
