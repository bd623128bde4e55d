package entity

// Tipos persistidos en reference_type.
const (
	ReferenceTypePurchase = "purchase"
	ReferenceTypeSale     = "sale"
	ReferenceTypeTransfer = "transfer"
)

// Reference identifica el documento de negocio que originó un movimiento.
// Las únicas variantes son PurchaseRef, SaleRef y TransferRef; nil significa sin documento.
type Reference interface {
	Type() string
	RefID() string
	reference()
}

// PurchaseRef referencia una compra.
type PurchaseRef struct{ ID string }

// SaleRef referencia una venta.
type SaleRef struct{ ID string }

// TransferRef referencia un documento de traspaso entre almacenes.
type TransferRef struct{ ID string }

func (r PurchaseRef) Type() string  { return ReferenceTypePurchase }
func (r PurchaseRef) RefID() string { return r.ID }
func (PurchaseRef) reference()      {}

func (r SaleRef) Type() string  { return ReferenceTypeSale }
func (r SaleRef) RefID() string { return r.ID }
func (SaleRef) reference()      {}

func (r TransferRef) Type() string  { return ReferenceTypeTransfer }
func (r TransferRef) RefID() string { return r.ID }
func (TransferRef) reference()      {}

// ReferenceFromPair reconstruye la referencia desde el par (reference_type, reference_id).
// Un tipo desconocido o un id vacío devuelven nil.
func ReferenceFromPair(refType, refID string) Reference {
	if refID == "" {
		return nil
	}
	switch refType {
	case ReferenceTypePurchase:
		return PurchaseRef{ID: refID}
	case ReferenceTypeSale:
		return SaleRef{ID: refID}
	case ReferenceTypeTransfer:
		return TransferRef{ID: refID}
	}
	return nil
}

// ReferencePair devuelve el par persistible; para nil ambos valores son vacíos.
func ReferencePair(ref Reference) (refType, refID string) {
	if ref == nil {
		return "", ""
	}
	return ref.Type(), ref.RefID()
}
