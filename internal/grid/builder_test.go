package grid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bristolgate/internal/errors"
	"bristolgate/pkg/contracts/domain"
)

func fact(d time.Time, series string, v float64) domain.Fact {
	return domain.Fact{Date: d, Series: series, Value: v}
}

func TestFromFacts_PivotAndSpan(t *testing.T) {
	facts := []domain.Fact{
		fact(date(2020, 1, 5), "GSPC_close", 3200),
		fact(date(2020, 1, 1), "GDP", 21000),
		fact(date(2020, 1, 10), "GSPC_close", 3250),
	}

	f, err := FromFacts(context.Background(), facts, BuildOptions{})
	require.NoError(t, err)

	// one row per day over the global min..max span
	assert.Equal(t, 10, f.Rows())
	assert.Equal(t, date(2020, 1, 1), f.Start())
	assert.Equal(t, date(2020, 1, 10), f.End())

	// rectangular: both columns exist over the full span
	assert.Equal(t, []string{"GDP", "GSPC_close"}, f.Columns())
}

func TestFromFacts_SingleValueBecomesConstant(t *testing.T) {
	facts := []domain.Fact{
		fact(date(2020, 1, 1), "GSPC_close", 3200),
		fact(date(2020, 1, 6), "GSPC_close", 3300),
		fact(date(2020, 1, 3), "GDP", 21000),
	}

	f, err := FromFacts(context.Background(), facts, BuildOptions{})
	require.NoError(t, err)

	// one observation plus boundary fill yields a constant column
	gdp, ok := f.Column("GDP")
	require.True(t, ok)
	for i, v := range gdp {
		assert.Equal(t, 21000.0, v, "row %d", i)
	}
}

func TestFromFacts_InterpolatesInterior(t *testing.T) {
	facts := []domain.Fact{
		fact(date(2020, 1, 1), "X", 10),
		fact(date(2020, 1, 5), "X", 50),
	}

	f, err := FromFacts(context.Background(), facts, BuildOptions{})
	require.NoError(t, err)

	x, _ := f.Column("X")
	assertSeries(t, []float64{10, 20, 30, 40, 50}, x)
}

func TestFromFacts_RegimeColumnForwardFillOnly(t *testing.T) {
	facts := []domain.Fact{
		fact(date(2020, 1, 1), "X", 1),
		fact(date(2020, 1, 3), "USREC", 0),
		fact(date(2020, 1, 5), "USREC", 1),
		fact(date(2020, 1, 7), "X", 7),
	}

	f, err := FromFacts(context.Background(), facts, BuildOptions{RegimeColumn: "USREC"})
	require.NoError(t, err)

	usrec, _ := f.Column("USREC")
	// leading nulls survive, steps are carried not interpolated
	assertSeries(t, []float64{null, null, 0, 0, 1, 1, 1}, usrec)
}

func TestFromFacts_MinDateFilter(t *testing.T) {
	facts := []domain.Fact{
		fact(date(1948, 6, 1), "X", 1),
		fact(date(1950, 1, 1), "X", 2),
		fact(date(1950, 1, 4), "X", 5),
	}

	f, err := FromFacts(context.Background(), facts, BuildOptions{MinDate: date(1950, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, date(1950, 1, 1), f.Start())
	assert.Equal(t, 4, f.Rows())
}

func TestFromFacts_DuplicateObservationLastWins(t *testing.T) {
	facts := []domain.Fact{
		fact(date(2020, 1, 1), "X", 1),
		fact(date(2020, 1, 1), "X", 2),
		fact(date(2020, 1, 2), "X", 3),
	}

	f, err := FromFacts(context.Background(), facts, BuildOptions{})
	require.NoError(t, err)

	x, _ := f.Column("X")
	assert.Equal(t, 2.0, x[0])
}

func TestFromFacts_Empty(t *testing.T) {
	_, err := FromFacts(context.Background(), nil, BuildOptions{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ClassEmptyInput, apperrors.ClassOf(err))

	// facts that all fall before MinDate are also empty input
	_, err = FromFacts(context.Background(),
		[]domain.Fact{fact(date(1900, 1, 1), "X", 1)},
		BuildOptions{MinDate: date(1950, 1, 1)})
	require.Error(t, err)
	assert.Equal(t, apperrors.ClassEmptyInput, apperrors.ClassOf(err))
}
