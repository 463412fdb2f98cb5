package finance

import (
	"context"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/tools"
)

// FinancialReportTool returns one or all financial statements for a
// company, newest reporting period first.
type FinancialReportTool struct{}

func (t *FinancialReportTool) Name() string {
	return "get_financial_report"
}

func (t *FinancialReportTool) Description() string {
	return "Get financial report data for a company"
}

func (t *FinancialReportTool) Params() []tools.ParamSpec {
	return []tools.ParamSpec{
		{
			Name:        "symbol",
			Type:        tools.TypeString,
			Description: symbolDescription,
			Required:    true,
		},
		{
			Name:        "report_type",
			Type:        tools.TypeString,
			Description: "Report type: balance sheet, income statement, cash flow statement, or all",
			Enum:        []string{"balance", "income", "cashflow", "all"},
			Required:    true,
		},
		{
			Name:        "periods",
			Type:        tools.TypeInteger,
			Description: "Number of reporting periods to retrieve, default is 4",
			Default:     4,
		},
	}
}

func (t *FinancialReportTool) Annotations() map[string]bool {
	return map[string]bool{"readOnlyHint": true}
}

func (t *FinancialReportTool) Execute(ctx context.Context, provider adapter.Adapter, args tools.ValidatedArgs) (interface{}, error) {
	result, err := provider.Call(ctx, adapter.Query{
		Kind:       adapter.KindFinancialReport,
		Symbol:     args.String("symbol"),
		ReportType: args.String("report_type"),
		Periods:    args.Int("periods"),
	})
	if err != nil {
		return nil, err
	}
	return result.Reports, nil
}
