// Package exporter writes design matrices to CSV and XLSX files so they can
// be handed to the lab as run sheets.
package exporter
