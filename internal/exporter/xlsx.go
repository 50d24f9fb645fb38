package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"doelab/internal/doe"
)

// DesignSheet is the worksheet name used for exported designs
const DesignSheet = "Design"

// WriteDesignXLSX writes a design matrix as a single-sheet workbook
func WriteDesignXLSX(w io.Writer, m *doe.DesignMatrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DesignSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, 0, len(m.Columns)+1)
	header = append(header, "Run")
	for _, c := range m.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(DesignSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range m.Matrix {
		cells := make([]any, 0, len(header))
		cells = append(cells, i+1)
		for _, c := range m.Columns {
			cells = append(cells, row[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DesignSheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write run %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
