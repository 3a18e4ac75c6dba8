package exporter

import (
	"strconv"

	"bristolgate/internal/grid"
)

// formatValue formats a grid cell for CSV output. Nulls become
// empty cells so spreadsheet tools and CSV readers round-trip them.
func formatValue(v float64) string {
	if grid.IsNull(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
