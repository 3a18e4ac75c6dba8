package grid

import (
	"context"
	"log/slog"
	"sort"
	"time"

	apperrors "bristolgate/internal/errors"
	"bristolgate/pkg/contracts/domain"
)

// BuildOptions controls how staged facts become a frame.
type BuildOptions struct {
	// RegimeColumn names the one binary indicator that is forward
	// filled instead of interpolated. Its leading nulls survive.
	RegimeColumn string
	// MinDate discards facts before this day. Zero keeps everything.
	MinDate time.Time
}

// FromFacts pivots a flat fact list into a dense daily frame. The
// index spans the global min and max fact date; every series is
// rectangular over that span. After the pivot each column is filled
// per policy: the regime column forward fill only, everything else
// linear interpolation with both boundaries extended.
func FromFacts(ctx context.Context, facts []domain.Fact, opts BuildOptions) (*Frame, error) {
	byCol := make(map[string]map[time.Time]float64)
	var minDate, maxDate time.Time

	for _, fact := range facts {
		day := Day(fact.Date)
		if day.IsZero() || fact.Series == "" {
			continue
		}
		if !opts.MinDate.IsZero() && day.Before(Day(opts.MinDate)) {
			continue
		}
		if minDate.IsZero() || day.Before(minDate) {
			minDate = day
		}
		if maxDate.IsZero() || day.After(maxDate) {
			maxDate = day
		}
		col := byCol[fact.Series]
		if col == nil {
			col = make(map[time.Time]float64)
			byCol[fact.Series] = col
		}
		// Last write wins for duplicate observations of a day.
		col[day] = fact.Value
	}

	if len(byCol) == 0 {
		return nil, apperrors.EmptyInput("normalize", "no usable facts from staging sources")
	}

	frame, err := New(minDate, maxDate)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(byCol))
	for name := range byCol {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		vals := frame.NullColumn()
		for day, v := range byCol[name] {
			if i := frame.Index(day); i >= 0 {
				vals[i] = v
			}
		}
		if name == opts.RegimeColumn {
			ForwardFill(vals)
		} else {
			Interpolate(vals)
			FillBounds(vals)
		}
		if err := frame.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "built daily grid",
		slog.Int("columns", len(names)),
		slog.Int("rows", frame.Rows()),
		slog.String("start", frame.Start().Format("2006-01-02")),
		slog.String("end", frame.End().Format("2006-01-02")))

	return frame, nil
}
