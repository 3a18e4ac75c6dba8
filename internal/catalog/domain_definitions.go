package catalog

import (
	"context"

	"bristolgate/internal/grid"
	"bristolgate/internal/smoothing"
	"bristolgate/pkg/contracts/domain"
)

// smooth filters a component column with the Savitzky-Golay
// parameters of the definition. Rules carry no context; the filter
// only uses it for degradation warnings.
func smooth(f *grid.Frame, component string, window, poly, deriv int) []float64 {
	return smoothing.Apply(context.Background(), component, col(f, component),
		smoothing.Params{Window: window, PolyOrder: poly, Deriv: deriv})
}

// DomainDefinitions returns the cross-symbol catalog evaluated after
// the feature battery. Its components are battery outputs (moving
// averages, logs, year-over-year changes) and earlier entries of this
// catalog, so it must not run before the battery. Order matters for
// the chained entries.
func DomainDefinitions() []SeriesDefinition {
	return []SeriesDefinition{
		{
			Name:       "TOTLNNSA_plus_WRESBAL",
			Components: []string{"TOTLNNSA", "WRESBAL"},
			Rule: func(f *grid.Frame) []float64 {
				return Sum(col(f, "TOTLNNSA"), col(f, "WRESBAL"))
			},
			Description: "Total Loans Plus All Reserves (TOTLNNSA + WRESBAL)",
			Unit:        "Percent",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "TOTLLNSA_plus_WRESBAL",
			Components: []string{"TOTLLNSA", "WRESBAL"},
			Rule: func(f *grid.Frame) []float64 {
				return Sum(col(f, "TOTLLNSA"), col(f, "WRESBAL"))
			},
			Description: "Total Loans Plus All Reserves (TOTLLNSA + WRESBAL)",
			Unit:        "Percent",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "GDP_YoY_to_DGS1",
			Components: []string{"GDP_YoY", "DGS1"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "GDP_YoY"), col(f, "DGS1"))
			},
			Description: "Economic Yield Curve, GDP YoY and 1-Year Tr (GDP_YoY-DGS1)",
			Unit:        "Percent",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "GDP_YoY_to_TB3MS",
			Components: []string{"GDP_YoY", "TB3MS"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "GDP_YoY"), col(f, "TB3MS"))
			},
			Description: "Economic Yield Curve, GDP YoY and 3-Month Tr (GDP_YoY-TB3MS)",
			Unit:        "Percent",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "OPHNFB_YoY_to_DGS1",
			Components: []string{"OPHNFB_YoY", "DGS1"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "OPHNFB_YoY"), col(f, "DGS1"))
			},
			Description: "Productivity Yield Curve, Real output YoY and 1-Year Tr (OPHNFB_YoY-DGS1)",
			Unit:        "Percent",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "^GSPC_open_mva200_norm",
			Components: []string{"^GSPC_open", "^GSPC_open_mva200"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "^GSPC_open"), col(f, "^GSPC_open_mva200")), 100)
			},
			Description: "S&P 500 normalized by 200 SMA",
			Unit:        "Percent",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "^GSPC_open_mva050_mva200",
			Components: []string{"^GSPC_open_mva050", "^GSPC_open_mva200"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "^GSPC_open_mva050"), col(f, "^GSPC_open_mva200"))
			},
			Description: "S&P 500 50 SMA - 200 SMA",
			Unit:        "Dollars",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "^GSPC_open_mva050_mva200_sig",
			Components: []string{"^GSPC_open_mva050_mva200"},
			Rule: func(f *grid.Frame) []float64 {
				return Positive(col(f, "^GSPC_open_mva050_mva200"))
			},
			Description: "Signal S&P 500 50 SMA - 200 SMA (1 if > 0, else 0)",
			Unit:        "-",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "UNRATE_smooth_21",
			Components: []string{"UNRATE"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "UNRATE", 21, 3, 0)
			},
			Description: "Smoothed Civilian Unemployment Rate U-3 (21-period Savitzky-Golay)",
			Unit:        "Percent",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "UNRATE_smooth_der2",
			Components: []string{"UNRATE"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "UNRATE", 501, 3, 2)
			},
			Description: "2nd Derivative of Smoothed U-3 (501-period Savitzky-Golay, p=3, m=2)",
			Unit:        "Percent/period^2",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "U6RATE_smooth_21",
			Components: []string{"U6RATE"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "U6RATE", 21, 3, 0)
			},
			Description: "Smoothed Total Unemployed U-6 (21-period Savitzky-Golay)",
			Unit:        "Percent",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "U6RATE_smooth_der2",
			Components: []string{"U6RATE"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "U6RATE", 501, 3, 2)
			},
			Description: "2nd Derivative of Smoothed U-6 (501-period Savitzky-Golay, p=3, m=2)",
			Unit:        "Percent/period^2",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "GSPC_open_Log_smooth_der",
			Components: []string{"^GSPC_open_Log"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "^GSPC_open_Log", 501, 3, 1)
			},
			Description: "Derivative of Smoothed Log Scale S&P 500 Open (501-period Savitzky-Golay, p=3, m=1)",
			Unit:        "log-points/period",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "GSPC_open_by_GDPDEF_Log_smooth_der",
			Components: []string{"GSPC_open_by_GDPDEF_Log"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "GSPC_open_by_GDPDEF_Log", 501, 3, 1)
			},
			Description: "Derivative of Smoothed Log S&P 500 Open (Real) by GDP Deflator (501-period Savitzky-Golay, p=3, m=1)",
			Unit:        "log-points/period",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "GSPC_open_Log_smooth_der_der",
			Components: []string{"GSPC_open_Log_smooth_der"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "GSPC_open_Log_smooth_der", 501, 3, 1)
			},
			Description: "Derivative of Smoothed GSPC_open_Log_smooth_der (effectively 2nd order effect on GSPC_open_Log)",
			Unit:        "log-points/period^2",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "NCBDBIQ027S_Log_Der",
			Components: []string{"NCBDBIQ027S_Log"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "NCBDBIQ027S_Log", 501, 3, 1)
			},
			Description: "Derivative of Smoothed Log Nonfinancial Corporate Business Debt (NCBDBIQ027S_Log)",
			Unit:        "log-points/period",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "BUSLOANS_Log_Der",
			Components: []string{"BUSLOANS_Log"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "BUSLOANS_Log", 501, 3, 1)
			},
			Description: "Derivative of Smoothed Log Commercial and Industrial Loans (BUSLOANS_Log)",
			Unit:        "log-points/period",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "GPDI_Log_Der",
			Components: []string{"GPDI_Log"},
			Rule: func(f *grid.Frame) []float64 {
				return smooth(f, "GPDI_Log", 501, 3, 1)
			},
			Description: "Derivative of Smoothed Log Gross Private Domestic Investment (GPDI_Log)",
			Unit:        "log-points/period",
			Source:      domain.SourceCalcFeat,
		},
		{
			Name:       "GDPSP500",
			Components: []string{"^GSPC_close", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Filled(SafeDiv(col(f, "^GSPC_close"), col(f, "GDP")))
			},
			Description: "S&P 500 (^GSPC_close) / GDP, interpolated",
			Unit:        "Ratio ($/$)",
			Source:      domain.SourceRatio,
		},
		{
			Name:       "RLGSP500",
			Components: []string{"RLG_close", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Filled(SafeDiv(col(f, "RLG_close"), col(f, "GDP")))
			},
			Description: "Russell 2000 (RLG_close) / GDP, interpolated",
			Unit:        "Ratio ($/$)",
			Source:      domain.SourceRatio,
		},
		{
			Name:       "DJISP500",
			Components: []string{"DJI_close", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Filled(SafeDiv(col(f, "DJI_close"), col(f, "GDP")))
			},
			Description: "Dow Jones Industrial Average (DJI_close) / GDP, interpolated",
			Unit:        "Ratio ($/$)",
			Source:      domain.SourceRatio,
		},
		{
			Name:       "GPDI_by_GDP",
			Components: []string{"GPDI", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Filled(SafeDiv(col(f, "GPDI"), col(f, "GDP")))
			},
			Description: "Gross Private Domestic Investment/GDP",
			Unit:        "Ratio ($/$)",
			Source:      domain.SourceRatio,
		},
		{
			Name:       "ret_base",
			Components: []string{"^GSPC_close"},
			Rule: func(f *grid.Frame) []float64 {
				return ZeroFill(RateOfChange(col(f, "^GSPC_close")))
			},
			Description: "S&P 500 Rate of Change",
			Unit:        "Percent",
			Source:      domain.SourceCalc,
		},
		{
			Name:       "ret_base_short_TB3MS",
			Components: []string{"TB3MS"},
			Rule: func(f *grid.Frame) []float64 {
				return ZeroFill(Scale(col(f, "TB3MS"), 1.0/365))
			},
			Description: "Daily Return from 3-Month T-Bill (TB3MS/365)",
			Unit:        "Percent",
			Source:      domain.SourceCalc,
		},
		{
			Name:       "eq_base",
			Components: []string{"ret_base"},
			Rule: func(f *grid.Frame) []float64 {
				return Compound(col(f, "ret_base"))
			},
			Description: "Equity Return, 100% long S&P 500",
			Unit:        "$1 Invested",
			Source:      domain.SourceCalc,
		},
		{
			Name:       "eq_base_short_TB3MS",
			Components: []string{"ret_base_short_TB3MS"},
			Rule: func(f *grid.Frame) []float64 {
				// simple interest from $1: rebase the running sum so
				// the curve starts at 1
				cs := CumSum(col(f, "ret_base_short_TB3MS"))
				if len(cs) == 0 {
					return cs
				}
				base := cs[0]
				out := make([]float64, len(cs))
				for i, v := range cs {
					out[i] = 1 + v - base
				}
				return out
			},
			Description: "Cumulative Equity from $1 Invested in 3-Month T-Bill (simple interest basis)",
			Unit:        "$1 Invested",
			Source:      domain.SourceCalc,
		},
	}
}
