package finance

import (
	"context"
	"fmt"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/analysis"
	"github.com/quantmesh/finmcp/internal/tools"
)

// TechnicalIndicatorsTool fetches price history and computes the requested
// indicator set over it.
type TechnicalIndicatorsTool struct{}

func (t *TechnicalIndicatorsTool) Name() string {
	return "calc_technical_indicators"
}

func (t *TechnicalIndicatorsTool) Description() string {
	return "Calculate technical indicators for a stock"
}

func (t *TechnicalIndicatorsTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{
			Name:        "symbol",
			Type:        tools.TypeString,
			Description: symbolDescription,
			Required:    true,
		},
		{
			Name:        "indicators",
			Type:        tools.TypeStringList,
			Description: "List of technical indicators to calculate",
			Enum:        []string{"MA", "MACD", "RSI", "KDJ", "BOLL"},
			Required:    true,
		},
		{
			Name:        "period",
			Type:        tools.TypeString,
			Description: "Data frequency: daily, weekly, or monthly",
			Enum:        []string{"daily", "weekly", "monthly"},
			Default:     "daily",
		},
	}
}

func (t *TechnicalIndicatorsTool) Annotations() map[string]bool {
	return map[string]bool{"readOnlyHint": true}
}

func (t *TechnicalIndicatorsTool) Execute(ctx context.Context, provider adapter.Adapter, args tools.ValidatedArgs) (interface{}, error) {
	result, err := provider.Call(ctx, adapter.Query{
		Kind:   adapter.KindStockPrice,
		Symbol: args.String("symbol"),
		Period: args.String("period"),
	})
	if err != nil {
		return nil, err
	}

	series, err := analysis.SeriesFromRows(result.Rows)
	if err != nil {
		return nil, adapter.NewError(adapter.FailMalformed, fmt.Sprintf("price data unusable for indicators: %v", err), err)
	}

	return map[string]interface{}{
		"symbol":     args.String("symbol"),
		"period":     args.String("period"),
		"dates":      series.Dates,
		"indicators": analysis.Indicators(series, args.StringList("indicators")),
	}, nil
}
