package finance

import (
	"github.com/quantmesh/finmcp/internal/tools"
)

// GetTools returns the full finance tool catalog in registration order.
func GetTools() []tools.Tool {
	return []tools.Tool{
		&StockInfoTool{},
		&StockPriceTool{},
		&FinancialReportTool{},
		&TechnicalIndicatorsTool{},
		&IndustryAnalysisTool{},
		&AnalyzeFinancialsTool{},
	}
}
