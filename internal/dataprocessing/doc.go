// Package dataprocessing turns uploaded spreadsheets into row records.
//
// ParseTable reads CSV or XLSX input, treats the first non-empty row as the
// header and returns one record per data row. Cells that parse as numbers
// become float64, blank cells are left out of the record and everything else
// is kept as a trimmed string.
//
//	table, err := dataprocessing.ParseTable(file, dataprocessing.FormatXLSX)
//	if err != nil {
//	    return err
//	}
//	res := spc.Analyze(spc.AnalysisRequest{Data: table, TargetVariable: "Yield"})
package dataprocessing
