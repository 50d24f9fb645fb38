package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"doelab/internal/dataprocessing"
	"doelab/internal/infrastructure"
	"doelab/internal/spc"
	"doelab/internal/validation"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// commandContext tags the command context with a trace ID so service logs correlate
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return infrastructure.EnsureTraceID(ctx)
}

// parseSeries reads a comma or whitespace separated list of numbers
func parseSeries(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		values = append(values, v)
	}
	return values, nil
}

// newFileValidator caps input files at the upload limit the server enforces
func newFileValidator() *validation.FileValidator {
	return validation.NewFileValidator(logger, cfg.Analysis.MaxUploadBytes)
}

// readTable parses a CSV or XLSX file chosen by extension
func readTable(path string) (spc.Table, error) {
	if err := newFileValidator().ValidateTableFile(path); err != nil {
		return nil, err
	}
	format, err := dataprocessing.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataprocessing.ParseTable(f, format)
}

// loadSeries takes numbers from the inline list, or from column of file
func loadSeries(inline, file, column string) ([]float64, error) {
	switch {
	case inline != "" && file != "":
		return nil, fmt.Errorf("--data and --file are mutually exclusive")
	case inline != "":
		return parseSeries(inline)
	case file == "":
		return nil, fmt.Errorf("one of --data or --file is required")
	case column == "":
		return nil, fmt.Errorf("--column is required with --file")
	}

	table, err := readTable(file)
	if err != nil {
		return nil, err
	}
	values, ok := spc.NumericColumn(table, column)
	if !ok {
		return nil, fmt.Errorf("column %q not found in %s", column, file)
	}
	return values, nil
}
