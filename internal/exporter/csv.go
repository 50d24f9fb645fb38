package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"doelab/internal/doe"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteDesignCSV writes a design matrix as CSV, one run per record.
// Columns follow the matrix column order; cells a run lacks are left blank.
func WriteDesignCSV(w io.Writer, m *doe.DesignMatrix, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	header := append([]string{"Run"}, m.Columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range m.Matrix {
		record := make([]string, 0, len(header))
		record = append(record, formatInt(int64(i+1)))
		for _, col := range m.Columns {
			record = append(record, formatCell(row[col]))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
