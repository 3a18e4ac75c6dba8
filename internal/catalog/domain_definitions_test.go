package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bristolgate/internal/grid"
	"bristolgate/internal/staging"
	"bristolgate/pkg/contracts/domain"
)

func TestDomainDefinitions_Wellformed(t *testing.T) {
	defs := DomainDefinitions()
	require.Len(t, defs, 26)

	seen := make(map[string]bool)
	for _, def := range defs {
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Components, "definition %s", def.Name)
		assert.NotNil(t, def.Rule, "definition %s", def.Name)
		assert.NotEmpty(t, def.Source, "definition %s", def.Name)
		assert.False(t, seen[def.Name], "duplicate definition %s", def.Name)
		seen[def.Name] = true
		assert.False(t, selfReferential(def), "definition %s references itself", def.Name)
	}
}

func TestDomainDefinitions_ChainedDependenciesDeclaredInOrder(t *testing.T) {
	defs := DomainDefinitions()
	position := make(map[string]int)
	for i, def := range defs {
		position[def.Name] = i
	}
	// eq_base consumes ret_base, the second derivative consumes the
	// first; within this catalog every such edge must point backwards
	for i, def := range defs {
		for _, comp := range def.Components {
			if j, isDomain := position[comp]; isDomain {
				assert.Less(t, j, i,
					"%s consumes %s but is declared before it", def.Name, comp)
			}
		}
	}
}

func TestDomainDefinitions_CrossoverAndSignal(t *testing.T) {
	ctx := context.Background()
	const rows = 40
	open := make([]float64, rows)
	fast := make([]float64, rows)
	slow := make([]float64, rows)
	for i := range open {
		open[i] = 100 + float64(i)
		fast[i] = open[i] - 2
		// the fast average overtakes the slow one halfway through
		if i < rows/2 {
			slow[i] = open[i]
		} else {
			slow[i] = open[i] - 5
		}
	}
	f := testFrame(t, map[string][]float64{
		"^GSPC_open":        open,
		"^GSPC_open_mva050": fast,
		"^GSPC_open_mva200": slow,
	})
	store := staging.NewMemoryCatalog()

	report, err := NewEvaluator(store, DomainDefinitions()).Run(ctx, f)
	require.NoError(t, err)
	assert.Positive(t, report.Created)
	assert.Positive(t, report.Skipped, "definitions without components must skip, not fail")

	cross, ok := f.Column("^GSPC_open_mva050_mva200")
	require.True(t, ok)
	assert.InDelta(t, -2.0, cross[0], 1e-9)
	assert.InDelta(t, 3.0, cross[rows-1], 1e-9)

	sig, ok := f.Column("^GSPC_open_mva050_mva200_sig")
	require.True(t, ok)
	assert.Equal(t, 0.0, sig[0])
	assert.Equal(t, 1.0, sig[rows-1])

	norm, ok := f.Column("^GSPC_open_mva200_norm")
	require.True(t, ok)
	assert.InDelta(t, 100.0, norm[0], 1e-9)

	rec, found, err := store.Get(ctx, "^GSPC_open_mva050_mva200")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SourceCalcFeat, rec.Source)
}

func TestDomainDefinitions_RatiosAndEquityCurves(t *testing.T) {
	ctx := context.Background()
	const rows = 30
	closeVals := make([]float64, rows)
	gdp := make([]float64, rows)
	tbill := make([]float64, rows)
	for i := range closeVals {
		closeVals[i] = 1000 * math.Pow(1.001, float64(i))
		gdp[i] = math.NaN()
		tbill[i] = 3.65
	}
	// GDP known only at the quarter-ish marks, the ratio interpolates
	gdp[0], gdp[15], gdp[29] = 20000, 21000, 22000

	f := testFrame(t, map[string][]float64{
		"^GSPC_close": closeVals,
		"GDP":         gdp,
		"TB3MS":       tbill,
	})
	store := staging.NewMemoryCatalog()

	_, err := NewEvaluator(store, DomainDefinitions()).Run(ctx, f)
	require.NoError(t, err)

	ratio, ok := f.Column("GDPSP500")
	require.True(t, ok)
	assert.Zero(t, grid.CountNonNull(ratio)-rows, "interpolated ratio must have no gaps")
	assert.InDelta(t, closeVals[0]/gdp[0], ratio[0], 1e-9)

	ret, ok := f.Column("ret_base")
	require.True(t, ok)
	assert.Equal(t, 0.0, ret[0], "first return has no reference and fills to zero")
	assert.InDelta(t, 0.001, ret[1], 1e-9)

	eq, ok := f.Column("eq_base")
	require.True(t, ok)
	// compounding the filled returns reproduces the price relative
	assert.InDelta(t, closeVals[rows-1]/closeVals[0], eq[rows-1], 1e-9)

	shortEq, ok := f.Column("eq_base_short_TB3MS")
	require.True(t, ok)
	assert.InDelta(t, 1.0, shortEq[0], 1e-9)
	assert.InDelta(t, 1.0+0.01*float64(rows-1), shortEq[rows-1], 1e-9)

	rec, found, err := store.Get(ctx, "GDPSP500")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SourceRatio, rec.Source)

	rec, found, err = store.Get(ctx, "ret_base")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SourceCalc, rec.Source)
}

func TestDomainDefinitions_SmoothedUnemployment(t *testing.T) {
	ctx := context.Background()
	const rows = 60
	unrate := make([]float64, rows)
	for i := range unrate {
		unrate[i] = 5 + math.Sin(float64(i)/8)
	}
	f := testFrame(t, map[string][]float64{"UNRATE": unrate})
	store := staging.NewMemoryCatalog()

	_, err := NewEvaluator(store, DomainDefinitions()).Run(ctx, f)
	require.NoError(t, err)

	sm, ok := f.Column("UNRATE_smooth_21")
	require.True(t, ok)
	assert.False(t, grid.AllNull(sm))
	// smoothing stays near the signal
	assert.InDelta(t, unrate[30], sm[30], 0.5)

	der2, ok := f.Column("UNRATE_smooth_der2")
	require.True(t, ok)
	assert.False(t, grid.AllNull(der2))
}

func TestPositive(t *testing.T) {
	got := Positive([]float64{-1, 0, 2, math.NaN()})
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 1.0, got[2])
	assert.True(t, grid.IsNull(got[3]))
}

func TestRateOfChange(t *testing.T) {
	got := RateOfChange([]float64{100, 110, 0, 50, math.NaN(), 60})
	assert.True(t, grid.IsNull(got[0]), "no reference for the first row")
	assert.InDelta(t, 0.1, got[1], 1e-9)
	assert.InDelta(t, -1.0, got[2], 1e-9)
	assert.True(t, grid.IsNull(got[3]), "zero reference must be null")
	assert.True(t, grid.IsNull(got[4]))
	assert.True(t, grid.IsNull(got[5]), "null reference must be null")
}

func TestCompound(t *testing.T) {
	got := Compound([]float64{0, 0.1, -0.5})
	assert.InDelta(t, 1.0, got[0], 1e-9)
	assert.InDelta(t, 1.1, got[1], 1e-9)
	assert.InDelta(t, 0.55, got[2], 1e-9)

	got = Compound([]float64{0.1, math.NaN(), 0.1})
	assert.True(t, grid.IsNull(got[1]))
	assert.True(t, grid.IsNull(got[2]), "null poisons the curve onward")
}

func TestZeroFillAndFilled(t *testing.T) {
	got := ZeroFill([]float64{math.NaN(), 2, math.NaN()})
	assert.Equal(t, []float64{0, 2, 0}, got)

	filled := Filled([]float64{math.NaN(), 2, math.NaN(), 4, math.NaN()})
	assert.Equal(t, []float64{2, 2, 3, 4, 4}, filled)
}

func TestCumSum(t *testing.T) {
	got := CumSum([]float64{1, 2, 3})
	assert.Equal(t, []float64{1, 3, 6}, got)
}
