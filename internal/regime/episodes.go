// Package regime turns a binary recession indicator into episode
// spans, pre-episode initiation windows and the smoothed training
// label built from them.
package regime

import (
	"time"

	"bristolgate/internal/grid"
	"bristolgate/pkg/contracts/domain"
)

// detectEpisodes first-differences a forward-filled 0/1 indicator.
// A +1 transition opens an episode, a -1 closes one. An end before
// the first start closes an episode that began before the observed
// window and is dropped; an episode still open at processing time
// gets now as its synthesized end.
func detectEpisodes(frame *grid.Frame, vals []float64, now time.Time) []domain.RegimeEpisode {
	var starts, ends []time.Time
	for i := 1; i < len(vals); i++ {
		if grid.IsNull(vals[i]) || grid.IsNull(vals[i-1]) {
			continue
		}
		switch vals[i] - vals[i-1] {
		case 1:
			starts = append(starts, frame.Date(i))
		case -1:
			ends = append(ends, frame.Date(i))
		}
	}

	if len(starts) == 0 {
		return nil
	}
	if len(ends) > 0 && ends[0].Before(starts[0]) {
		ends = ends[1:]
	}
	if len(ends) < len(starts) {
		ends = append(ends, grid.Day(now))
	}

	n := len(starts)
	if len(ends) < n {
		n = len(ends)
	}
	episodes := make([]domain.RegimeEpisode, 0, n)
	for i := 0; i < n; i++ {
		episodes = append(episodes, domain.RegimeEpisode{Start: starts[i], End: ends[i]})
	}
	return episodes
}

// monthStart snaps t to the first day of its month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// initiationWindows derives the pre-episode window for each
// episode: one year before the episode month down to one month
// before it. Episodes starting before the grid's earliest day are
// dropped.
func initiationWindows(episodes []domain.RegimeEpisode, earliest time.Time) []domain.InitiationWindow {
	windows := make([]domain.InitiationWindow, 0, len(episodes))
	for _, ep := range episodes {
		if ep.Start.Before(earliest) {
			continue
		}
		ms := monthStart(ep.Start)
		windows = append(windows, domain.InitiationWindow{
			Start:        ms.AddDate(-1, 0, 0),
			End:          ms.AddDate(0, -1, 0),
			EpisodeStart: ep.Start,
		})
	}
	return windows
}
