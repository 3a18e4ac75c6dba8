package regime

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"bristolgate/internal/grid"
	"bristolgate/internal/smoothing"
	"bristolgate/internal/staging"
	"bristolgate/pkg/contracts/domain"
)

// Output column names.
const (
	FlagColumn   = "RecInit"
	SmoothColumn = "RecInit_Smooth"
)

const jitterAmount = 0.01

// Report summarizes one labeler run.
type Report struct {
	Episodes    int  `json:"episodes"`
	Windows     int  `json:"windows"`
	FlaggedDays int  `json:"flagged_days"`
	PassThrough bool `json:"pass_through"`
}

// Labeler derives the recession initiation label columns.
type Labeler struct {
	store staging.CatalogStore
	now   func() time.Time
	rng   *rand.Rand
}

// Option configures a Labeler.
type Option func(*Labeler)

// WithNow overrides the clock used to close a still-open episode.
func WithNow(now func() time.Time) Option {
	return func(l *Labeler) { l.now = now }
}

// WithJitterSeed makes the label jitter reproducible.
func WithJitterSeed(seed int64) Option {
	return func(l *Labeler) { l.rng = rand.New(rand.NewSource(seed)) }
}

// NewLabeler creates a labeler writing metadata to store.
func NewLabeler(store staging.CatalogStore, opts ...Option) *Labeler {
	l := &Labeler{
		store: store,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run appends the flag and smoothed label columns derived from the
// named regime column. A grid with no detectable episode start
// passes through unchanged; that is a valid outcome, not an error.
func (l *Labeler) Run(ctx context.Context, frame *grid.Frame, column string) (Report, error) {
	var report Report

	vals, ok := frame.Column(column)
	if !ok {
		slog.WarnContext(ctx, "regime column not in grid, skipping labeler",
			slog.String("column", column))
		report.PassThrough = true
		return report, nil
	}

	episodes := detectEpisodes(frame, vals, l.now())
	if len(episodes) == 0 {
		slog.InfoContext(ctx, "no regime start transitions found, passing grid through",
			slog.String("column", column))
		report.PassThrough = true
		return report, nil
	}
	report.Episodes = len(episodes)

	windows := initiationWindows(episodes, frame.Start())
	report.Windows = len(windows)

	flag := make([]float64, frame.Rows())
	for i := range flag {
		day := frame.Date(i)
		for _, w := range windows {
			if w.Contains(day) {
				flag[i] = 1
				report.FlaggedDays++
				break
			}
		}
	}

	smooth := l.buildLabel(ctx, flag)

	if err := frame.AddColumn(FlagColumn, flag); err != nil {
		return report, err
	}
	if err := frame.AddColumn(SmoothColumn, smooth); err != nil {
		return report, err
	}
	if err := l.appendMetadata(ctx); err != nil {
		return report, err
	}

	slog.InfoContext(ctx, "regime labeling complete",
		slog.Int("episodes", report.Episodes),
		slog.Int("windows", report.Windows),
		slog.Int("flagged_days", report.FlaggedDays))
	return report, nil
}

// buildLabel converts the binary flag into the smoothed label: a
// per-window day counter, smoothed wide, clipped at zero, rescaled
// to [0,1] by the global max and jittered.
func (l *Labeler) buildLabel(ctx context.Context, flag []float64) []float64 {
	ramp := make([]float64, len(flag))
	run := 0.0
	for i, v := range flag {
		if v == 1 {
			run++
			ramp[i] = run
		} else {
			run = 0
		}
	}

	smooth := smoothing.Apply(ctx, SmoothColumn, ramp, smoothing.PresetRamp)

	max := 0.0
	for i, v := range smooth {
		if v < 0 {
			smooth[i] = 0
			continue
		}
		if v > max {
			max = v
		}
	}
	if max > 0 {
		for i := range smooth {
			smooth[i] /= max
		}
	} else {
		for i := range smooth {
			smooth[i] = 0
		}
	}

	for i := range smooth {
		smooth[i] += (l.rng.Float64()*2 - 1) * jitterAmount
	}
	return smooth
}

func (l *Labeler) appendMetadata(ctx context.Context) error {
	records := []domain.SymbolRecord{
		{
			Symbol:      FlagColumn,
			Source:      domain.SourceCalc,
			Description: "1 for Recession Initiation Period, 0 For All Else",
			Unit:        "(-)",
		},
		{
			Symbol:      SmoothColumn,
			Source:      domain.SourceCalc,
			Description: "Smoothed indicator for Recession Initiation Period (0-1 scale, jittered)",
			Unit:        "(-)",
		},
	}
	for _, rec := range records {
		exists, err := l.store.Exists(ctx, rec.Symbol)
		if err != nil {
			return fmt.Errorf("catalog lookup for %s: %w", rec.Symbol, err)
		}
		if exists {
			continue
		}
		if err := l.store.Append(ctx, rec); err != nil {
			return fmt.Errorf("catalog append for %s: %w", rec.Symbol, err)
		}
	}
	return nil
}
