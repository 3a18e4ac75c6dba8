package domain

import (
	"time"
)

// Fact is one observation from a staging source: a value for a
// series on a calendar day. Series is the flattened column name,
// e.g. "GSPC_close" for quote fields or "GDP" for single-value
// economic series.
type Fact struct {
	Date   time.Time `json:"date" db:"date" validate:"required"`
	Series string    `json:"series" db:"series" validate:"required"`
	Value  float64   `json:"value" db:"value"`
}

// SymbolRecord describes one symbol in the metadata catalog.
// The catalog is append-only and deduplicated by Symbol.
type SymbolRecord struct {
	Symbol      string `json:"symbol" db:"symbol" validate:"required"`
	Source      string `json:"source" db:"source" validate:"required"`
	Description string `json:"description,omitempty" db:"description"`
	Unit        string `json:"unit,omitempty" db:"unit"`
}

// Well-known catalog source tags. CalcFeat and Ratio mark the
// cross-symbol series derived after the feature battery.
const (
	SourceCalc     = "Calc"
	SourceCalcFeat = "CalcFeat"
	SourceRatio    = "Ratio"
	SourceFeature  = "Feature"
	SourceSkipped  = "Skipped"
)

// RegimeEpisode is one contiguous span where a binary regime
// indicator was raised. End may be synthesized when the episode is
// still open at processing time.
type RegimeEpisode struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// InitiationWindow is the pre-episode span used for labeling:
// it opens one year before the month start of the episode and
// closes one month before it. Bounds are exclusive on both sides
// when testing membership.
type InitiationWindow struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	EpisodeStart time.Time `json:"episode_start"`
}

// Contains reports whether t falls strictly inside the window.
func (w InitiationWindow) Contains(t time.Time) bool {
	return t.After(w.Start) && t.Before(w.End)
}
