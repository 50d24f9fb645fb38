package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"doelab/internal/spc"
)

// Format identifies an input file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyTable is returned when the input has no header row
	ErrEmptyTable = errors.New("no tabular data found")
)

// DetectFormat infers the format from a file name
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
}

// ParseTable reads r in the given format
func ParseTable(r io.Reader, format Format) (spc.Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return buildTable(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// readXLSX returns the rows of the first sheet that has any data
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			slog.Debug("Skipping unreadable sheet", slog.String("sheet_name", name), slog.String("error", err.Error()))
			continue
		}
		if hasData(rows) {
			slog.Debug("Found data in sheet", slog.String("sheet_name", name), slog.Int("total_rows", len(rows)))
			return rows, nil
		}
	}
	return nil, ErrEmptyTable
}

func buildTable(rows [][]string) (spc.Table, error) {
	headerRow := -1
	for i, row := range rows {
		if hasData([][]string{row}) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, ErrEmptyTable
	}

	header := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		header[i] = strings.TrimSpace(h)
	}

	table := make(spc.Table, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		record := make(map[string]any, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v, ok := parseCell(cell); ok {
				record[header[i]] = v
			}
		}
		if len(record) > 0 {
			table = append(table, record)
		}
	}
	return table, nil
}

// thousandsGrouped matches numbers like 1,234 or -12,345,678.90
var thousandsGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// parseCell returns numeric cells as float64 and everything else as the
// trimmed string. Commas are only read as thousands separators; "1,5" stays text.
func parseCell(cell string) (any, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil, false
	}
	num := s
	if thousandsGrouped.MatchString(s) {
		num = strings.ReplaceAll(s, ",", "")
	}
	if f, err := strconv.ParseFloat(num, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, true
	}
	return s, true
}

func hasData(rows [][]string) bool {
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return true
			}
		}
	}
	return false
}
