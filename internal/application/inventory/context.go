package inventory

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-series/internal/domain"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

// MovementContext es la configuración de una entrada o salida.
type MovementContext struct {
	WarehouseID string
	Reason      string
	Reference   entity.Reference
	Details     map[string]any
	UserID      string
	// SkipTransaction indica que el caller ya abrió la transacción; si ctx no la lleva es un error.
	SkipTransaction bool

	// Solo para productos con lote.
	LotNumber string
	ExpiresAt *time.Time
	// UnitCost en una entrada actualiza el costo promedio del producto.
	UnitCost *decimal.Decimal
}

// rawMovementContext refleja las claves reconocidas del mapa de contexto.
type rawMovementContext struct {
	AlmacenID       string          `mapstructure:"almacen_id"`
	Motivo          string          `mapstructure:"motivo"`
	ReferenciaType  string          `mapstructure:"referencia_type"`
	ReferenciaID    string          `mapstructure:"referencia_id"`
	Detalles        map[string]any  `mapstructure:"detalles"`
	SkipTransaction bool            `mapstructure:"skip_transaction"`
	NumeroLote      string          `mapstructure:"numero_lote"`
	FechaCaducidad  time.Time       `mapstructure:"fecha_caducidad"`
	CostoUnitario   decimal.Decimal `mapstructure:"costo_unitario"`
	UserID          string          `mapstructure:"user_id"`
}

// referenceAliases acepta los nombres de documento usados por los colaboradores.
var referenceAliases = map[string]string{
	"purchase":      entity.ReferenceTypePurchase,
	"compra":        entity.ReferenceTypePurchase,
	"sale":          entity.ReferenceTypeSale,
	"venta":         entity.ReferenceTypeSale,
	"transfer":      entity.ReferenceTypeTransfer,
	"traspaso":      entity.ReferenceTypeTransfer,
	"transferencia": entity.ReferenceTypeTransfer,
}

// ParseMovementContext decodifica el mapa de contexto de entrada/salida.
// Claves: almacen_id, motivo, referencia_type, referencia_id, detalles, skip_transaction,
// numero_lote, fecha_caducidad (YYYY-MM-DD o RFC3339), costo_unitario, user_id. El resto se ignora.
func ParseMovementContext(m map[string]any) (MovementContext, error) {
	var raw rawMovementContext
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDateHook(),
			toDecimalHook(),
		),
	})
	if err != nil {
		return MovementContext{}, err
	}
	if err := dec.Decode(m); err != nil {
		return MovementContext{}, fmt.Errorf("%w: contexto de movimiento: %v", domain.ErrInvalidInput, err)
	}

	mc := MovementContext{
		WarehouseID:     strings.TrimSpace(raw.AlmacenID),
		Reason:          raw.Motivo,
		Details:         raw.Detalles,
		UserID:          raw.UserID,
		SkipTransaction: raw.SkipTransaction,
		LotNumber:       strings.TrimSpace(raw.NumeroLote),
	}
	if raw.ReferenciaType != "" {
		refType, ok := referenceAliases[strings.ToLower(strings.TrimSpace(raw.ReferenciaType))]
		if !ok {
			return MovementContext{}, fmt.Errorf("%w: referencia_type desconocido %q", domain.ErrInvalidInput, raw.ReferenciaType)
		}
		mc.Reference = entity.ReferenceFromPair(refType, raw.ReferenciaID)
	}
	if !raw.FechaCaducidad.IsZero() {
		t := raw.FechaCaducidad
		mc.ExpiresAt = &t
	}
	if _, ok := m["costo_unitario"]; ok && m["costo_unitario"] != nil {
		c := raw.CostoUnitario
		mc.UnitCost = &c
	}
	return mc, nil
}

func stringToDateHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		if s == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, nil
		}
		return time.Parse(time.RFC3339, s)
	}
}

func toDecimalHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(v))
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case decimal.Decimal:
			return v, nil
		}
		return data, nil
	}
}
