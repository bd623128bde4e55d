package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-series/internal/application/inventory"
)

// Hojas del reporte de conciliación.
const (
	SheetSummary       = "Resumen"
	SheetRepairs       = "Reparaciones"
	SheetDiscrepancies = "Descuadres"
)

var _ inventory.SweepReportWriter = (*XLSXWriter)(nil)

// XLSXWriter escribe el resultado de un barrido de conciliación como libro de Excel.
type XLSXWriter struct{}

// NewXLSXWriter construye el escritor.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Write guarda el reporte en path.
func (w *XLSXWriter) Write(path string, report *inventory.SweepReport) error {
	f, err := build(report)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("guardar reporte %s: %w", path, err)
	}
	return nil
}

// Encode escribe el reporte en out (por ejemplo, una respuesta HTTP).
func (w *XLSXWriter) Encode(out io.Writer, report *inventory.SweepReport) error {
	f, err := build(report)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("escribir reporte: %w", err)
	}
	return nil
}

func build(report *inventory.SweepReport) (*excelize.File, error) {
	f := excelize.NewFile()
	// NewFile crea "Sheet1"; se renombra como hoja de resumen.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetRepairs, SheetDiscrepancies} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	failed := 0
	for _, p := range report.Products {
		if p.Err != nil {
			failed++
		}
	}
	summary := [][]any{
		{"Inicio", report.StartedAt.Format("2006-01-02 15:04:05")},
		{"Fin", report.FinishedAt.Format("2006-01-02 15:04:05")},
		{"Productos revisados", len(report.Products)},
		{"Filas reparadas", report.RepairCount()},
		{"Productos con error", failed},
		{"Descuadres de resumen", len(report.Discrepancies)},
		{"Descuadres corregidos", report.Fixed},
	}
	if err := writeRows(f, SheetSummary, nil, summary); err != nil {
		f.Close()
		return nil, err
	}

	var repairs [][]any
	for _, p := range report.Products {
		if p.Err != nil {
			repairs = append(repairs, []any{p.ProductID, nil, nil, nil, nil, p.Err.Error()})
			continue
		}
		for _, r := range p.Repairs {
			kind := "corregida"
			if r.Created {
				kind = "creada"
			}
			repairs = append(repairs, []any{p.ProductID, r.WarehouseID, r.Before, r.After, kind})
		}
	}
	repairHeader := []any{"Producto", "Almacén", "Antes", "Después", "Tipo", "Error"}
	if err := writeRows(f, SheetRepairs, repairHeader, repairs); err != nil {
		f.Close()
		return nil, err
	}

	var discrepancies [][]any
	for _, d := range report.Discrepancies {
		discrepancies = append(discrepancies, []any{d.ProductID, d.SKU, d.Name, d.Summary, d.RowsTotal, d.Difference})
	}
	discHeader := []any{"Producto", "SKU", "Nombre", "Stock resumen", "Suma por almacén", "Diferencia"}
	if err := writeRows(f, SheetDiscrepancies, discHeader, discrepancies); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	start := 1
	if header != nil {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		start = 2
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("hoja %s fila %d: %w", sheet, start+i, err)
		}
	}
	return nil
}
