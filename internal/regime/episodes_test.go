package regime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bristolgate/internal/grid"
	"bristolgate/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// indicator builds a frame holding one 0/1 column with the given
// half-open [start, end) raised spans, expressed as row indexes.
func indicator(t *testing.T, rows int, spans ...[2]int) (*grid.Frame, []float64) {
	t.Helper()
	f, err := grid.New(date(2000, 1, 1), date(2000, 1, 1).AddDate(0, 0, rows-1))
	require.NoError(t, err)

	vals := make([]float64, rows)
	for _, span := range spans {
		for i := span[0]; i < span[1] && i < rows; i++ {
			vals[i] = 1
		}
	}
	require.NoError(t, f.AddColumn("USREC", vals))
	return f, vals
}

func TestDetectEpisodes(t *testing.T) {
	f, vals := indicator(t, 500, [2]int{100, 150}, [2]int{400, 420})

	episodes := detectEpisodes(f, vals, date(2020, 1, 1))
	require.Len(t, episodes, 2)
	assert.Equal(t, f.Date(100), episodes[0].Start)
	assert.Equal(t, f.Date(150), episodes[0].End)
	assert.Equal(t, f.Date(400), episodes[1].Start)
	assert.Equal(t, f.Date(420), episodes[1].End)
}

func TestDetectEpisodes_LeadingEndDropped(t *testing.T) {
	// series opens mid-episode: the first -1 closes an episode that
	// began before the window and must not pair with a later start
	f, vals := indicator(t, 300, [2]int{0, 50}, [2]int{200, 250})

	episodes := detectEpisodes(f, vals, date(2020, 1, 1))
	require.Len(t, episodes, 1)
	assert.Equal(t, f.Date(200), episodes[0].Start)
	assert.Equal(t, f.Date(250), episodes[0].End)
}

func TestDetectEpisodes_OpenEpisodeGetsNow(t *testing.T) {
	f, vals := indicator(t, 300, [2]int{100, 300})

	now := date(2024, 6, 15)
	episodes := detectEpisodes(f, vals, now)
	require.Len(t, episodes, 1)
	assert.Equal(t, f.Date(100), episodes[0].Start)
	assert.Equal(t, now, episodes[0].End)
}

func TestDetectEpisodes_NoStarts(t *testing.T) {
	f, vals := indicator(t, 100)
	assert.Empty(t, detectEpisodes(f, vals, date(2020, 1, 1)))

	// constant 1 has no +1 transition either
	f2, vals2 := indicator(t, 100, [2]int{0, 100})
	assert.Empty(t, detectEpisodes(f2, vals2, date(2020, 1, 1)))
}

func TestDetectEpisodes_LeadingNullsIgnored(t *testing.T) {
	f, vals := indicator(t, 200, [2]int{100, 150})
	for i := 0; i < 20; i++ {
		vals[i] = nullValue()
	}
	episodes := detectEpisodes(f, vals, date(2020, 1, 1))
	require.Len(t, episodes, 1)
	assert.Equal(t, f.Date(100), episodes[0].Start)
}

func nullValue() float64 {
	var z float64
	return z / z
}

func TestMonthStart(t *testing.T) {
	assert.Equal(t, date(2001, 2, 1), monthStart(date(2001, 2, 4)))
	assert.Equal(t, date(2001, 2, 1), monthStart(date(2001, 2, 1)))
}

func TestInitiationWindows(t *testing.T) {
	episodes := []domain.RegimeEpisode{
		{Start: date(2001, 2, 4), End: date(2001, 11, 1)},
	}

	windows := initiationWindows(episodes, date(1990, 1, 1))
	require.Len(t, windows, 1)
	assert.Equal(t, date(2000, 2, 1), windows[0].Start)
	assert.Equal(t, date(2001, 1, 1), windows[0].End)
	assert.Equal(t, date(2001, 2, 4), windows[0].EpisodeStart)
}

func TestInitiationWindows_DropsPreGridEpisodes(t *testing.T) {
	episodes := []domain.RegimeEpisode{
		{Start: date(1949, 6, 1), End: date(1950, 2, 1)},
		{Start: date(1953, 8, 1), End: date(1954, 5, 1)},
	}

	windows := initiationWindows(episodes, date(1950, 1, 1))
	require.Len(t, windows, 1)
	assert.Equal(t, date(1953, 8, 1), windows[0].EpisodeStart)
}

func TestInitiationWindow_StrictBounds(t *testing.T) {
	w := domain.InitiationWindow{Start: date(2000, 2, 1), End: date(2001, 1, 1)}

	assert.False(t, w.Contains(date(2000, 2, 1)), "lower bound is exclusive")
	assert.True(t, w.Contains(date(2000, 2, 2)))
	assert.True(t, w.Contains(date(2000, 12, 31)))
	assert.False(t, w.Contains(date(2001, 1, 1)), "upper bound is exclusive")
}
