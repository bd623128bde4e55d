package report_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appinv "github.com/jhoicas/inventario-series/internal/application/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/inventory"
	"github.com/jhoicas/inventario-series/internal/domain/repository"
	"github.com/jhoicas/inventario-series/internal/infrastructure/report"
)

func sampleReport() *appinv.SweepReport {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &appinv.SweepReport{
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Products: []appinv.ProductSweepResult{
			{ProductID: "P", Repairs: []inventory.Repair{
				{WarehouseID: "W", Before: 5, After: 3},
				{WarehouseID: "W2", Before: 0, After: 1, Created: true},
			}},
			{ProductID: "Q"},
			{ProductID: "R", Err: errors.New("boom")},
		},
		Discrepancies: []repository.SummaryDiscrepancy{
			{ProductID: "B", SKU: "SKU-B", Name: "Bulto", Summary: 10, RowsTotal: 7, Difference: 3},
		},
	}
}

func TestXLSXWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conciliacion.xlsx")
	require.NoError(t, report.NewXLSXWriter().Write(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.SheetSummary, report.SheetRepairs, report.SheetDiscrepancies}, f.GetSheetList())

	v, err := f.GetCellValue(report.SheetSummary, "B4")
	require.NoError(t, err)
	assert.Equal(t, "2", v, "filas reparadas")

	rows, err := f.GetRows(report.SheetRepairs)
	require.NoError(t, err)
	require.Len(t, rows, 4) // cabecera + 2 reparaciones + 1 error
	assert.Equal(t, []string{"P", "W", "5", "3", "corregida"}, rows[1])
	assert.Equal(t, "creada", rows[2][4])
	assert.Equal(t, "boom", rows[3][5])

	disc, err := f.GetRows(report.SheetDiscrepancies)
	require.NoError(t, err)
	require.Len(t, disc, 2)
	assert.Equal(t, []string{"B", "SKU-B", "Bulto", "10", "7", "3"}, disc[1])
}

func TestXLSXWriter_Encode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.NewXLSXWriter().Encode(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(report.SheetSummary, "B3")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}
