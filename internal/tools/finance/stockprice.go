package finance

import (
	"context"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/tools"
)

// StockPriceTool returns historical OHLCV rows for a symbol. The provider
// defaults the date range to the trailing year when none is given.
type StockPriceTool struct{}

func (t *StockPriceTool) Name() string {
	return "get_stock_price"
}

func (t *StockPriceTool) Description() string {
	return "Get historical price data for a stock"
}

func (t *StockPriceTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{
			Name:        "symbol",
			Type:        tools.TypeString,
			Description: symbolDescription,
			Required:    true,
		},
		{
			Name:        "period",
			Type:        tools.TypeString,
			Description: "Data frequency: daily, weekly, or monthly",
			Enum:        []string{"daily", "weekly", "monthly"},
			Default:     "daily",
		},
		{
			Name:        "start_date",
			Type:        tools.TypeString,
			Description: "Start date in YYYYMMDD format",
			Format:      tools.FormatDate,
		},
		{
			Name:        "end_date",
			Type:        tools.TypeString,
			Description: "End date in YYYYMMDD format",
			Format:      tools.FormatDate,
		},
	}
}

func (t *StockPriceTool) Annotations() map[string]bool {
	return map[string]bool{"readOnlyHint": true}
}

func (t *StockPriceTool) Execute(ctx context.Context, provider adapter.Adapter, args tools.ValidatedArgs) (interface{}, error) {
	result, err := provider.Call(ctx, adapter.Query{
		Kind:      adapter.KindStockPrice,
		Symbol:    args.String("symbol"),
		Period:    args.String("period"),
		StartDate: args.String("start_date"),
		EndDate:   args.String("end_date"),
	})
	if err != nil {
		return nil, err
	}
	return result.Rows, nil
}
