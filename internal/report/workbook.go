package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/DeafMist/transit-proximity/internal/models"
)

// SheetName is the worksheet holding one row per match.
const SheetName = "nearest_station"

var header = []any{"property_id", "nearest_station", "stop_id", "distance_km"}

// WriteWorkbook saves matches as an XLSX workbook at path. Matches without a
// station leave the station columns blank.
func WriteWorkbook(path string, matches []models.NearestMatch) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, m := range matches {
		row := []any{m.PropertyID, "", m.StopID, ""}
		if m.NearestStation != nil {
			row[1] = *m.NearestStation
		}
		if m.DistanceKm != nil {
			row[3] = *m.DistanceKm
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 14); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "B", 40); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
