package inventory

import "github.com/jhoicas/inventario-series/internal/domain/entity"

// SerialEvent es el tipo de cambio de ciclo de vida de una serie.
type SerialEvent string

const (
	SerialCreated  SerialEvent = "created"
	SerialUpdated  SerialEvent = "updated"
	SerialDeleted  SerialEvent = "deleted"
	SerialRestored SerialEvent = "restored"
)

// LedgerOp es la dirección de un comando sobre el stock agregado.
type LedgerOp string

const (
	OpIncrement LedgerOp = "increment"
	OpDecrement LedgerOp = "decrement"
)

// Motivos registrados en los movimientos disparados por series.
const (
	ReasonSaleOut         = "Venta de producto con serie"
	ReasonSaleReturn      = "Devolución de serie por cancelación de venta"
	ReasonPurchaseIn      = "Entrada de serie por compra"
	ReasonPurchaseReturn  = "Devolución de serie por cancelación de compra"
	ReasonStateIn         = "Entrada por cambio de estado de serie"
	ReasonStateOut        = "Salida por cambio de estado de serie"
	ReasonTransferOut     = "Traspaso entre almacenes (Salida)"
	ReasonTransferIn      = "Traspaso entre almacenes (Entrada)"
	OriginSerialLifecycle = "serial_lifecycle"
)

// SerialChange describe una mutación de serie ya validada.
// Previous es el estado antes de la mutación; es nil en created.
type SerialChange struct {
	Event    SerialEvent
	Unit     *entity.SerialUnit
	Previous *entity.SerialUnit
	// TransferRef es la referencia opcional de un traspaso.
	TransferRef entity.Reference
}

// LedgerCommand es una instrucción de incremento o decremento de una unidad
// (o Quantity unidades) sobre el stock agregado de un producto en un almacén.
type LedgerCommand struct {
	Op          LedgerOp
	ProductID   string
	WarehouseID string
	Quantity    int64
	Reason      string
	Reference   entity.Reference
	Details     map[string]any
}

// Transition traduce un cambio de serie en los comandos de ledger que mantienen el stock
// agregado en línea con las unidades in_stock. Es una función pura: no consulta ni escribe.
//
// Con un alcance silenciado no produce comandos. Una unidad sin producto o sin almacén
// tampoco produce comandos (el caller lo registra en el log).
func Transition(scope Scope, change SerialChange) []LedgerCommand {
	if scope.Muted() || change.Unit == nil {
		return nil
	}
	unit := change.Unit

	switch change.Event {
	case SerialCreated:
		// Las series de compra las contabiliza el flujo de compra.
		if unit.State != entity.SerialStateInStock || unit.PurchaseID != "" {
			return nil
		}
		return single(OpIncrement, unit, unit.WarehouseID)

	case SerialUpdated:
		prev := change.Previous
		if prev == nil {
			return nil
		}
		wasIn := prev.State == entity.SerialStateInStock
		isIn := unit.State == entity.SerialStateInStock
		switch {
		case !wasIn && isIn:
			return single(OpIncrement, unit, unit.WarehouseID)
		case wasIn && !isIn:
			return single(OpDecrement, unit, prev.WarehouseID)
		case wasIn && isIn && prev.WarehouseID != "" && unit.WarehouseID != "" && prev.WarehouseID != unit.WarehouseID:
			return transfer(unit, prev.WarehouseID, change.TransferRef)
		}
		return nil

	case SerialDeleted:
		if unit.State != entity.SerialStateInStock {
			return nil
		}
		return single(OpDecrement, unit, unit.WarehouseID)

	case SerialRestored:
		if unit.State != entity.SerialStateInStock {
			return nil
		}
		return single(OpIncrement, unit, unit.WarehouseID)
	}
	return nil
}

func single(op LedgerOp, unit *entity.SerialUnit, warehouseID string) []LedgerCommand {
	if unit.ProductID == "" || warehouseID == "" {
		return nil
	}
	reason, ref := reasonFor(op, unit)
	return []LedgerCommand{{
		Op:          op,
		ProductID:   unit.ProductID,
		WarehouseID: warehouseID,
		Quantity:    1,
		Reason:      reason,
		Reference:   ref,
		Details:     serialDetails(unit),
	}}
}

func transfer(unit *entity.SerialUnit, fromWarehouseID string, ref entity.Reference) []LedgerCommand {
	if unit.ProductID == "" {
		return nil
	}
	out := serialDetails(unit)
	out["almacen_destino_id"] = unit.WarehouseID
	in := serialDetails(unit)
	in["almacen_origen_id"] = fromWarehouseID
	return []LedgerCommand{
		{
			Op:          OpDecrement,
			ProductID:   unit.ProductID,
			WarehouseID: fromWarehouseID,
			Quantity:    1,
			Reason:      ReasonTransferOut,
			Reference:   ref,
			Details:     out,
		},
		{
			Op:          OpIncrement,
			ProductID:   unit.ProductID,
			WarehouseID: unit.WarehouseID,
			Quantity:    1,
			Reason:      ReasonTransferIn,
			Reference:   ref,
			Details:     in,
		},
	}
}

// reasonFor elige referencia y motivo: primero venta, luego compra, luego genérico.
func reasonFor(op LedgerOp, unit *entity.SerialUnit) (string, entity.Reference) {
	switch {
	case unit.SaleID != "":
		if op == OpIncrement {
			return ReasonSaleReturn, entity.SaleRef{ID: unit.SaleID}
		}
		return ReasonSaleOut, entity.SaleRef{ID: unit.SaleID}
	case unit.PurchaseID != "":
		if op == OpIncrement {
			return ReasonPurchaseIn, entity.PurchaseRef{ID: unit.PurchaseID}
		}
		return ReasonPurchaseReturn, entity.PurchaseRef{ID: unit.PurchaseID}
	}
	if op == OpIncrement {
		return ReasonStateIn, nil
	}
	return ReasonStateOut, nil
}

func serialDetails(unit *entity.SerialUnit) map[string]any {
	return map[string]any{
		"numero_serie": unit.SerialNumber,
		"serie_id":     unit.ID,
		"estado_serie": unit.State,
		"origen":       OriginSerialLifecycle,
	}
}
