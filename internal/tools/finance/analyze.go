package finance

import (
	"context"
	"fmt"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/analysis"
	"github.com/quantmesh/finmcp/internal/tools"
)

// AnalyzeFinancialsTool fetches the latest statements and derives
// profitability, liquidity and solvency ratios, optionally joined with
// market-based multiples from the current price.
type AnalyzeFinancialsTool struct{}

func (t *AnalyzeFinancialsTool) Name() string {
	return "analyze_financials"
}

func (t *AnalyzeFinancialsTool) Description() string {
	return "Analyze financial statements and calculate financial ratios"
}

func (t *AnalyzeFinancialsTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{
			Name:        "symbol",
			Type:        tools.TypeString,
			Description: symbolDescription,
			Required:    true,
		},
		{
			Name:        "include_market_ratios",
			Type:        tools.TypeBoolean,
			Description: "Whether to include market-based ratios (requires current stock price and shares outstanding)",
			Default:     false,
		},
	}
}

func (t *AnalyzeFinancialsTool) Annotations() map[string]bool {
	return map[string]bool{"readOnlyHint": true}
}

func (t *AnalyzeFinancialsTool) Execute(ctx context.Context, provider adapter.Adapter, args tools.ValidatedArgs) (interface{}, error) {
	symbol := args.String("symbol")

	reports, err := provider.Call(ctx, adapter.Query{
		Kind:       adapter.KindFinancialReport,
		Symbol:     symbol,
		ReportType: "all",
		Periods:    4,
	})
	if err != nil {
		return nil, err
	}

	balance := latestStatement(reports.Reports["balance_sheet"])
	income := latestStatement(reports.Reports["income_statement"])
	if balance == nil || income == nil {
		return nil, adapter.NewError(adapter.FailMalformed, fmt.Sprintf("no financial statements available for %s", symbol), nil)
	}

	result := map[string]interface{}{
		"symbol":        symbol,
		"profitability": analysis.Profitability(income, balance),
		"liquidity":     analysis.Liquidity(balance),
		"solvency":      analysis.Solvency(balance),
	}

	if args.Bool("include_market_ratios") {
		price, shares := t.marketInputs(ctx, provider, symbol)
		if shares > 0 {
			balance["total_shares"] = shares
		}
		result["market_ratios"] = analysis.MarketRatios(price, income, balance)
	}

	return result, nil
}

// marketInputs best-effort fetches the latest close and total shares.
// Failures here degrade to empty market ratios rather than failing the
// whole analysis.
func (t *AnalyzeFinancialsTool) marketInputs(ctx context.Context, provider adapter.Adapter, symbol string) (price, shares float64) {
	if info, err := provider.Call(ctx, adapter.Query{Kind: adapter.KindStockInfo, Symbol: symbol}); err == nil {
		if v, ok := info.Fields["total_shares"].(float64); ok {
			shares = v
		}
		if v, ok := info.Fields["price"].(float64); ok {
			price = v
		}
	}

	if price > 0 {
		return price, shares
	}

	if quotes, err := provider.Call(ctx, adapter.Query{Kind: adapter.KindStockPrice, Symbol: symbol, Period: "daily"}); err == nil && len(quotes.Rows) > 0 {
		latest := quotes.Rows[len(quotes.Rows)-1]
		if v, ok := latest["close"].(float64); ok {
			price = v
		}
	}
	return price, shares
}

func latestStatement(rows []map[string]interface{}) analysis.Statement {
	if len(rows) == 0 {
		return nil
	}
	return analysis.StatementFromRow(rows[0])
}
