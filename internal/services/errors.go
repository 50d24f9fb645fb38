package services

import "errors"

var (
	// ErrDesignTooLarge is returned when a design would exceed the configured run cap
	ErrDesignTooLarge = errors.New("design exceeds maximum number of runs")

	// ErrSampleTooLarge is returned when an input series exceeds the configured size cap
	ErrSampleTooLarge = errors.New("sample exceeds maximum size")

	// ErrUnsupportedExport is returned for an unknown design export format
	ErrUnsupportedExport = errors.New("unsupported export format")
)
