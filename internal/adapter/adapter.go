package adapter

import "context"

// QueryKind selects which provider capability a Query targets.
type QueryKind string

const (
	KindStockInfo       QueryKind = "stock_info"
	KindStockPrice      QueryKind = "stock_price"
	KindFinancialReport QueryKind = "financial_report"
	KindIndustry        QueryKind = "industry"
)

// Query is the uniform request shape handed to an adapter. Only the fields
// relevant to the Kind are populated.
type Query struct {
	Kind       QueryKind
	Symbol     string
	Market     string // "A" or "HK"; empty means detect from symbol
	Period     string // daily, weekly, monthly
	StartDate  string // YYYYMMDD
	EndDate    string // YYYYMMDD
	ReportType string // balance, income, cashflow, all
	Periods    int
	Industry   string
	Metric     string
}

// Result is the provider-agnostic payload an adapter returns. Tabular data
// (price series, statement rows) lands in Rows with normalized column names;
// scalar lookups (stock info) land in Fields. Statement queries group their
// tables under Reports.
type Result struct {
	Fields  map[string]interface{}              `json:"fields,omitempty"`
	Rows    []map[string]interface{}            `json:"rows,omitempty"`
	Reports map[string][]map[string]interface{} `json:"reports,omitempty"`
}

// Adapter is the boundary to the external market-data provider. Call never
// lets a provider-native fault escape: every failure is an *Error with one
// of the closed failure kinds. Connect is invoked exactly once by the
// lifecycle manager before the first Call.
type Adapter interface {
	Connect(ctx context.Context) error
	Call(ctx context.Context, q Query) (*Result, error)
	Close() error
}
