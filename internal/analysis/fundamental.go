package analysis

// Statement is the latest reporting period of a financial statement,
// field name to value.
type Statement map[string]float64

// StatementFromRow converts a raw report row to a Statement, keeping only
// numeric fields.
func StatementFromRow(row map[string]interface{}) Statement {
	st := make(Statement, len(row))
	for k, v := range row {
		if f, ok := toFloat(v); ok {
			st[k] = f
		}
	}
	return st
}

// Profitability computes margin and return ratios from income statement
// and balance sheet figures. Ratios whose denominator is missing or zero
// are omitted.
func Profitability(income, balance Statement) map[string]interface{} {
	out := make(map[string]interface{})

	revenue := income["revenue"]
	if revenue > 0 {
		putRatio(out, "gross_margin", income["gross_profit"], revenue, true)
		putRatio(out, "operating_margin", income["operating_profit"], revenue, true)
		putRatio(out, "net_margin", income["net_profit"], revenue, true)
	}
	putRatio(out, "roe", income["net_profit"], balance["total_equity"], true)
	putRatio(out, "roa", income["net_profit"], balance["total_assets"], true)
	return out
}

// Liquidity computes short-term solvency ratios from the balance sheet.
func Liquidity(balance Statement) map[string]interface{} {
	out := make(map[string]interface{})

	liabilities := balance["current_liabilities"]
	if liabilities <= 0 {
		return out
	}
	current := balance["current_assets"]
	putRatio(out, "current_ratio", current, liabilities, false)
	putRatio(out, "quick_ratio", current-balance["inventory"], liabilities, false)
	putRatio(out, "cash_ratio", balance["cash"], liabilities, false)
	return out
}

// Solvency computes leverage ratios from the balance sheet.
func Solvency(balance Statement) map[string]interface{} {
	out := make(map[string]interface{})
	putRatio(out, "debt_ratio", balance["total_liabilities"], balance["total_assets"], true)
	putRatio(out, "debt_to_equity", balance["total_liabilities"], balance["total_equity"], false)
	return out
}

// MarketRatios derives valuation multiples from the current price and
// per-share figures.
func MarketRatios(price float64, income, balance Statement) map[string]interface{} {
	out := make(map[string]interface{})
	if price <= 0 {
		return out
	}

	shares := balance["total_shares"]
	if shares > 0 {
		eps := income["net_profit"] / shares
		if eps > 0 {
			out["pe_ratio"] = round2(price / eps)
		}
		bvps := balance["total_equity"] / shares
		if bvps > 0 {
			out["pb_ratio"] = round2(price / bvps)
		}
	}
	return out
}

// putRatio records numerator/denominator when the denominator is usable,
// as a percentage when pct is set.
func putRatio(out map[string]interface{}, name string, num, den float64, pct bool) {
	if den == 0 {
		return
	}
	r := num / den
	if pct {
		r *= 100
	}
	out[name] = round2(r)
}
