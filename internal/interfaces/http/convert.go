package http

import (
	"time"

	"github.com/jhoicas/inventario-series/internal/application/dto"
	appinv "github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/entity"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
)

func toMovementResponses(list []*entity.InventoryMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		refType, refID := entity.ReferencePair(m.Reference)
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			ProductID:     m.ProductID,
			WarehouseID:   m.WarehouseID,
			LotID:         m.LotID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			StockBefore:   m.StockBefore,
			StockAfter:    m.StockAfter,
			Reason:        m.Reason,
			ReferenceType: refType,
			ReferenceID:   refID,
			Details:       m.Details,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}

func toSerialResponse(u *entity.SerialUnit) dto.SerialResponse {
	return dto.SerialResponse{
		ID:           u.ID,
		ProductID:    u.ProductID,
		WarehouseID:  u.WarehouseID,
		SerialNumber: u.SerialNumber,
		State:        u.State,
		PurchaseID:   u.PurchaseID,
		SaleID:       u.SaleID,
		DeletedAt:    u.DeletedAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toRepairDTOs(repairs []inventory.Repair) []dto.RepairDTO {
	out := make([]dto.RepairDTO, 0, len(repairs))
	for _, r := range repairs {
		out = append(out, dto.RepairDTO{WarehouseID: r.WarehouseID, Before: r.Before, After: r.After, Created: r.Created})
	}
	return out
}

func toSweepResponse(r *appinv.SweepReport) dto.SweepResponse {
	resp := dto.SweepResponse{
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		RepairCount:   r.RepairCount(),
		Products:      make([]dto.SweepProductDTO, 0, len(r.Products)),
		Discrepancies: make([]dto.SummaryDiscrepancyDTO, 0, len(r.Discrepancies)),
		Fixed:         r.Fixed,
	}
	for _, p := range r.Products {
		item := dto.SweepProductDTO{ProductID: p.ProductID}
		if p.Err != nil {
			item.Error = p.Err.Error()
		} else if len(p.Repairs) > 0 {
			item.Repairs = toRepairDTOs(p.Repairs)
		}
		resp.Products = append(resp.Products, item)
	}
	for _, d := range r.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, dto.SummaryDiscrepancyDTO{
			ProductID: d.ProductID, SKU: d.SKU, Name: d.Name,
			Summary: d.Summary, RowsTotal: d.RowsTotal, Difference: d.Difference,
		})
	}
	return resp
}

// parseDate acepta YYYY-MM-DD; vacío devuelve nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
