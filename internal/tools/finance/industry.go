package finance

import (
	"context"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/tools"
)

// IndustryAnalysisTool returns industry rankings and competitive-landscape
// data from the provider.
type IndustryAnalysisTool struct{}

func (t *IndustryAnalysisTool) Name() string {
	return "get_industry_analysis"
}

func (t *IndustryAnalysisTool) Description() string {
	return "Get industry analysis data including rankings and competitive landscape"
}

func (t *IndustryAnalysisTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{
			Name:        "industry",
			Type:        tools.TypeString,
			Description: "Industry name or code",
			Required:    true,
		},
		{
			Name:        "metric",
			Type:        tools.TypeString,
			Description: "Analysis metric: pe (price-to-earnings), pb (price-to-book), roe (return on equity), growth, or profit_margin",
			Enum:        []string{"pe", "pb", "roe", "growth", "profit_margin"},
		},
	}
}

func (t *IndustryAnalysisTool) Annotations() map[string]bool {
	return map[string]bool{"readOnlyHint": true}
}

func (t *IndustryAnalysisTool) Execute(ctx context.Context, provider adapter.Adapter, args tools.ValidatedArgs) (interface{}, error) {
	result, err := provider.Call(ctx, adapter.Query{
		Kind:     adapter.KindIndustry,
		Industry: args.String("industry"),
		Metric:   args.String("metric"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"industry": args.String("industry"),
		"metric":   args.String("metric"),
		"rankings": result.Rows,
	}, nil
}
