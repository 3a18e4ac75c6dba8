// Package exporter persists pipeline outputs as CSV artifacts.
//
// GridCSVStore writes the featured grid to a timestamped file plus
// a stable "latest" alias that downstream consumers read, and a
// matching snapshot of the symbol metadata catalog. CSVWriter is
// the shared low-level writer with streaming support and UTF-8 BOM
// for Excel compatibility.
package exporter
