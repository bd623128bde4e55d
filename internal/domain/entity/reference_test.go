package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-series/internal/domain/entity"
)

func TestReferencePair_IdaYVuelta(t *testing.T) {
	for _, ref := range []entity.Reference{
		entity.PurchaseRef{ID: "c-1"},
		entity.SaleRef{ID: "v-1"},
		entity.TransferRef{ID: "t-1"},
	} {
		typ, id := entity.ReferencePair(ref)
		assert.Equal(t, ref, entity.ReferenceFromPair(typ, id))
	}

	typ, id := entity.ReferencePair(nil)
	assert.Empty(t, typ)
	assert.Empty(t, id)
	assert.Nil(t, entity.ReferenceFromPair("", ""))
	assert.Nil(t, entity.ReferenceFromPair("invoice", "x"), "tipo desconocido")
	assert.Nil(t, entity.ReferenceFromPair(entity.ReferenceTypeSale, ""), "sin id no hay referencia")
}

func TestSerialUnit_InStock(t *testing.T) {
	u := &entity.SerialUnit{State: entity.SerialStateInStock}
	assert.True(t, u.InStock())
	now := time.Now()
	u.DeletedAt = &now
	assert.False(t, u.InStock(), "una serie eliminada no cuenta")
	assert.True(t, u.IsDeleted())
	assert.False(t, entity.ValidSerialState("lost"))
}
