package finance

import (
	"context"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/tools"
)

const symbolDescription = "Stock code. For A-shares use format like '600519' or 'SH600519', for HK stocks use format like '00700'"

// StockInfoTool returns the company profile for a symbol: name, industry
// classification, market cap, valuation multiples, share counts.
type StockInfoTool struct{}

func (t *StockInfoTool) Name() string {
	return "get_stock_info"
}

func (t *StockInfoTool) Description() string {
	return "Get basic information about a stock, including company profile, industry classification, market cap, etc."
}

func (t *StockInfoTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{
			Name:        "symbol",
			Type:        tools.TypeString,
			Description: symbolDescription,
			Required:    true,
		},
		{
			Name:        "market",
			Type:        tools.TypeString,
			Description: "Stock market: A for A-shares, HK for Hong Kong stocks",
			Enum:        []string{"A", "HK"},
		},
	}
}

func (t *StockInfoTool) Annotations() map[string]bool {
	return map[string]bool{"readOnlyHint": true}
}

func (t *StockInfoTool) Execute(ctx context.Context, provider adapter.Adapter, args tools.ValidatedArgs) (interface{}, error) {
	result, err := provider.Call(ctx, adapter.Query{
		Kind:   adapter.KindStockInfo,
		Symbol: args.String("symbol"),
		Market: args.String("market"),
	})
	if err != nil {
		return nil, err
	}
	return result.Fields, nil
}
