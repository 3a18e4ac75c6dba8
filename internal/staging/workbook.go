package staging

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "bristolgate/internal/errors"
	"bristolgate/pkg/contracts/domain"
)

// WorkbookSource reads daily quotes for one symbol from an xlsx
// workbook. The first sheet is expected to carry a header row of
// Date, Open, High, Low, Close, Volume; extra columns are ignored
// and rows with unparseable dates are skipped.
type WorkbookSource struct {
	path   string
	symbol string
}

// NewWorkbookSource creates a source over the workbook at path.
func NewWorkbookSource(path, symbol string) *WorkbookSource {
	return &WorkbookSource{path: path, symbol: symbol}
}

// Name implements FactSource.
func (s *WorkbookSource) Name() string {
	return s.path
}

var workbookDateLayouts = []string{"2006-01-02", "01-02-06", "1/2/2006", "2006-01-02 15:04:05"}

// Facts implements FactSource.
func (s *WorkbookSource) Facts(ctx context.Context) ([]domain.Fact, error) {
	book, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, apperrors.FatalIO(s.path, err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, apperrors.FatalIO(s.path, err)
	}
	if len(rows) < 2 {
		return nil, apperrors.EmptyInput(s.path, "workbook has no data rows")
	}

	// Map header names to column positions.
	fieldCols := make(map[string]int)
	dateCol := -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "date":
			dateCol = i
		case "open", "high", "low", "close", "volume":
			fieldCols[strings.ToLower(strings.TrimSpace(header))] = i
		}
	}
	if dateCol < 0 || len(fieldCols) == 0 {
		return nil, apperrors.EmptyInput(s.path, "workbook is missing date or quote columns")
	}

	var facts []domain.Fact
	skipped := 0
	for _, row := range rows[1:] {
		if dateCol >= len(row) {
			skipped++
			continue
		}
		day, ok := parseWorkbookDate(row[dateCol])
		if !ok {
			skipped++
			continue
		}
		for _, field := range quoteFields {
			col, present := fieldCols[field]
			if !present || col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(row[col], ",", ""), 64)
			if err != nil {
				continue
			}
			facts = append(facts, domain.Fact{
				Date:   day,
				Series: SeriesName(s.symbol, field),
				Value:  value,
			})
		}
	}

	if skipped > 0 {
		slog.WarnContext(ctx, "skipped workbook rows with bad dates",
			slog.String("workbook", s.path),
			slog.Int("skipped", skipped))
	}
	slog.InfoContext(ctx, "read staging workbook",
		slog.String("workbook", s.path),
		slog.String("symbol", s.symbol),
		slog.Int("facts", len(facts)))
	return facts, nil
}

func parseWorkbookDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range workbookDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	// Excel serial dates survive GetRows in some workbooks.
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 20000 && serial < 80000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
