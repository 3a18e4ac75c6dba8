package catalog

import (
	"bristolgate/internal/grid"
)

// Definitions returns the derived series catalog in evaluation
// order. Later entries may consume earlier outputs, e.g. the
// interest burden ratio builds on BUSLOANS_INTEREST.
func Definitions() []SeriesDefinition {
	return []SeriesDefinition{
		{
			Name:       "RSALESAGG",
			Components: []string{"RRSFS", "RSALES"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(Sum(col(f, "RRSFS"), col(f, "RSALES")), 0.5)
			},
			Description: "Real Retail and Food Services Sales (Mean of RRSFS and RSALES)",
			Unit:        "Millions of Dollars",
		},
		{
			Name:       "BUSLOANS_minus_BUSLOANSNSA",
			Components: []string{"BUSLOANS", "BUSLOANSNSA"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "BUSLOANS"), col(f, "BUSLOANSNSA"))
			},
			Description: "Business Loans (Monthly) SA - NSA",
			Unit:        "Billions of U.S. Dollars",
		},
		{
			Name:       "BUSLOANS_minus_BUSLOANSNSA_by_GDP",
			Components: []string{"BUSLOANS_minus_BUSLOANSNSA", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "BUSLOANS_minus_BUSLOANSNSA"), col(f, "GDP")), 100)
			},
			Description: "Business Loans (Monthly) SA - NSA divided by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "BUSLOANS_by_GDP",
			Components: []string{"BUSLOANS", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "BUSLOANS"), col(f, "GDP")), 100)
			},
			Description: "Business Loans (Monthly, SA) Normalized by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "BUSLOANS_INTEREST",
			Components: []string{"BUSLOANS", "DGS10"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(Product(col(f, "BUSLOANS"), col(f, "DGS10")), 0.01)
			},
			Description: "Business Loans (Monthly, SA) Adjusted Interest Burdens (using DGS10)",
			Unit:        "Calculated Billions of U.S. Dollars",
		},
		{
			Name:       "BUSLOANS_INTEREST_by_GDP",
			Components: []string{"BUSLOANS_INTEREST", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "BUSLOANS_INTEREST"), col(f, "GDP")), 100)
			},
			Description: "Business Loans (Monthly, SA) Adjusted Interest Burden Divided by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "W875RX1_by_GDP",
			Components: []string{"W875RX1", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "W875RX1"), col(f, "GDP")), 100)
			},
			Description: "Real Personal Income Normalized by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "PI_by_GDP",
			Components: []string{"PI", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "PI"), col(f, "GDP")), 100)
			},
			Description: "Personal Income (SA) Normalized by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "CPROFIT_by_GDP",
			Components: []string{"CPROFIT", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "CPROFIT"), col(f, "GDP")), 100)
			},
			Description: "National income: Corporate profits before tax (with IVA and CCAdj) Normalized by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "TOTLNNSA",
			Components: []string{"BUSLOANS", "REALLNNSA", "CONSUMERNSA"},
			Rule: func(f *grid.Frame) []float64 {
				return Sum(col(f, "BUSLOANS"), col(f, "REALLNNSA"), col(f, "CONSUMERNSA"))
			},
			Description: "Total Loans, Not Seasonally Adjusted (BUSLOANS + REALLNNSA + CONSUMERNSA)",
			Unit:        "Billions of U.S. Dollars",
		},
		{
			Name:       "TOTLNNSA_by_GDP",
			Components: []string{"TOTLNNSA", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "TOTLNNSA"), col(f, "GDP")), 100)
			},
			Description: "Total Loans, Not Seasonally Adjusted, divided by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "WRESBAL_by_GDP",
			Components: []string{"WRESBAL", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "WRESBAL"), col(f, "GDP")), 100)
			},
			Description: "Reserve Balances with Federal Reserve Banks Divided by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "DGS30_to_DGS10",
			Components: []string{"DGS30", "DGS10"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "DGS30"), col(f, "DGS10"))
			},
			Description: "Yield Curve: 30-Year Treasury Constant Maturity Minus 10-Year Treasury Constant Maturity",
			Unit:        "Percent",
		},
		{
			Name:       "DGS10_to_DGS2",
			Components: []string{"DGS10", "DGS2"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "DGS10"), col(f, "DGS2"))
			},
			Description: "Yield Curve: 10-Year Treasury Constant Maturity Minus 2-Year Treasury Constant Maturity",
			Unit:        "Percent",
		},
		{
			Name:       "DGS10_to_TB3MS",
			Components: []string{"DGS10", "TB3MS"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "DGS10"), col(f, "TB3MS"))
			},
			Description: "Yield Curve: 10-Year Treasury Constant Maturity Minus 3-Month Treasury Bill Secondary Market Rate",
			Unit:        "Percent",
		},
		{
			Name:       "AAA_div_DGS10",
			Components: []string{"AAA", "DGS10"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "AAA"), col(f, "DGS10"))
			},
			Description: "Moody's Seasoned Aaa Corporate Bond Yield Relative to 10-Year Treasury Constant Maturity (AAA/DGS10)",
			Unit:        "Ratio",
		},
		{
			Name:       "UNEMPLOY_by_POPTHM",
			Components: []string{"UNEMPLOY", "POPTHM"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "UNEMPLOY"), col(f, "POPTHM")), 100)
			},
			Description: "Unemployment Level (SA) / Population",
			Unit:        "%",
		},
		{
			Name:       "U6_to_U3",
			Components: []string{"U6RATE", "UNRATE"},
			Rule: func(f *grid.Frame) []float64 {
				return Diff(col(f, "U6RATE"), col(f, "UNRATE"))
			},
			Description: "U-6 Unemployment Rate Minus U-3 Unemployment Rate (U6RATE - UNRATE)",
			Unit:        "%",
		},
		{
			Name:       "DCOILWTICO_by_PPIACO",
			Components: []string{"DCOILWTICO", "PPIACO"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "DCOILWTICO"), col(f, "PPIACO"))
			},
			Description: "Crude Oil WTI Price Normalized by Producer Price Index: All Commodities",
			Unit:        "$/bbl/Index",
		},
		{
			Name:       "GDP_by_POPTHM",
			Components: []string{"GDP", "POPTHM"},
			Rule: func(f *grid.Frame) []float64 {
				// GDP is in billions, population in thousands.
				return SafeDiv(Scale(col(f, "GDP"), 1_000_000), col(f, "POPTHM"))
			},
			Description: "GDP per Capita",
			Unit:        "$/person",
		},
		{
			Name:       "GDP_by_CPIAUCSL",
			Components: []string{"GDP", "CPIAUCSL"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "GDP"), Scale(col(f, "CPIAUCSL"), 0.01))
			},
			Description: "GDP Deflated by CPI (CPIAUCSL)",
			Unit:        "Billions of Constant Dollars",
		},
		{
			Name:       "GDP_by_CPIAUCSL_by_POPTHM",
			Components: []string{"GDP_by_CPIAUCSL", "POPTHM"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(Scale(col(f, "GDP_by_CPIAUCSL"), 1_000_000), col(f, "POPTHM"))
			},
			Description: "GDP Deflated by CPI, per Capita",
			Unit:        "Constant $/Person",
		},
		{
			Name:       "GSPC_Close_by_MDY_Close",
			Components: []string{"^GSPC_close", "MDY_close"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "^GSPC_close"), col(f, "MDY_close"))
			},
			Description: "S&P 500 Close Normalized by S&P MidCap 400 Close",
			Unit:        "Ratio",
		},
		{
			Name:       "QQQ_Close_by_MDY_Close",
			Components: []string{"QQQ_close", "MDY_close"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "QQQ_close"), col(f, "MDY_close"))
			},
			Description: "Nasdaq 100 Close (QQQ) Normalized by S&P MidCap 400 Close",
			Unit:        "Ratio",
		},
		{
			Name:       "GSPC_DailySwing",
			Components: []string{"^GSPC_high", "^GSPC_low", "^GSPC_open"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(Diff(col(f, "^GSPC_high"), col(f, "^GSPC_low")), col(f, "^GSPC_open"))
			},
			Description: "S&P 500 (GSPC) Daily Swing: (High - Low) / Open",
			Unit:        "Ratio",
		},
		{
			Name:       "GSPC_Close_by_GDPDEF",
			Components: []string{"^GSPC_close", "GDPDEF"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "^GSPC_close"), Scale(col(f, "GDPDEF"), 0.01))
			},
			Description: "S&P 500 (GSPC) Close Deflated by GDP Deflator",
			Unit:        "Constant Dollars",
		},
		{
			Name:       "GSPC_open_by_GDPDEF",
			Components: []string{"^GSPC_open", "GDPDEF"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "^GSPC_open"), Scale(col(f, "GDPDEF"), 0.01))
			},
			Description: "S&P 500 (GSPC) Open Deflated by GDP Deflator",
			Unit:        "Constant Dollars",
		},
		{
			Name:       "HOUST_div_POPTHM",
			Components: []string{"HOUST", "POPTHM"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "HOUST"), col(f, "POPTHM"))
			},
			Description: "Housing Starts per Capita (Thousands of Units SAAR / Thousands of Persons)",
			Unit:        "Starts per 1000 Persons",
		},
		{
			Name:       "MSPUS_times_HOUST",
			Components: []string{"MSPUS", "HOUST"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(Product(col(f, "MSPUS"), col(f, "HOUST")), 0.001)
			},
			Description: "Median Sales Price of New Houses Sold times Housing Starts (Value of New Construction Started)",
			Unit:        "Millions of Dollars",
		},
		{
			Name:       "FARMINCOME_by_GDP",
			Components: []string{"USDA_NET_FARM_INCOME", "GDP"},
			Rule: func(f *grid.Frame) []float64 {
				return Scale(SafeDiv(col(f, "USDA_NET_FARM_INCOME"), col(f, "GDP")), 100)
			},
			Description: "Farm Income (Annual, NSA) Divided by GDP",
			Unit:        "Percent",
		},
		{
			Name:       "GSG_Close_by_GDPDEF",
			Components: []string{"GSG_close", "GDPDEF"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "GSG_close"), col(f, "GDPDEF"))
			},
			Description: "GSCI Commodity-Indexed Trust (GSG Close) Normalized by GDP Deflator",
			Unit:        "Ratio",
		},
		{
			Name:       "GSG_Close_by_GSPC_Close",
			Components: []string{"GSG_close", "^GSPC_close"},
			Rule: func(f *grid.Frame) []float64 {
				return SafeDiv(col(f, "GSG_close"), col(f, "^GSPC_close"))
			},
			Description: "GSCI Commodity-Indexed Trust (GSG Close) Normalized by S&P 500 Close (GSPC Close)",
			Unit:        "Ratio",
		},
	}
}
