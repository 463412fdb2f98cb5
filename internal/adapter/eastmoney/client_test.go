package eastmoney

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/quantmesh/finmcp/internal/adapter"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL, RatePerSecond: 1000, Burst: 100})
	return client, srv
}

func TestConnectProbe(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/qt/ping" {
			t.Errorf("unexpected probe path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConnectFailsOnServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	err := client.Connect(context.Background())
	var aerr *adapter.Error
	if !errors.As(err, &aerr) || aerr.Kind != adapter.FailUnreachable {
		t.Fatalf("expected unreachable, got %v", err)
	}
}

func TestStockInfoMapsFieldCodes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("secid"); got != "1.600519" {
			t.Errorf("expected secid 1.600519, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"f57":"600519","f58":"Kweichow Moutai","f43":1700.5,"f127":"Beverages","f999":"ignored"}}`))
	}))

	result, err := client.Call(context.Background(), adapter.Query{Kind: adapter.KindStockInfo, Symbol: "600519"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Fields["name"] != "Kweichow Moutai" {
		t.Errorf("expected name mapped from f58, got %v", result.Fields["name"])
	}
	if result.Fields["industry"] != "Beverages" {
		t.Errorf("expected industry mapped from f127, got %v", result.Fields["industry"])
	}
	if _, leaked := result.Fields["f999"]; leaked {
		t.Error("unmapped field codes must not leak through")
	}
}

func TestStockInfoUnknownSymbol(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	}))

	_, err := client.Call(context.Background(), adapter.Query{Kind: adapter.KindStockInfo, Symbol: "999999"})
	var aerr *adapter.Error
	if !errors.As(err, &aerr) || aerr.Kind != adapter.FailUnknownSymbol {
		t.Fatalf("expected unknown_symbol for null data, got %v", err)
	}
}

func TestStockPriceParsesKlines(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("klt"); got != "102" {
			t.Errorf("expected weekly klt 102, got %q", got)
		}
		w.Write([]byte(`{"data":{"klines":["2024-01-05,1690.0,1700.5,1712.0,1688.8,32000,5.4e8","2024-01-12,1701.0,1695.2,1710.0,1690.0,28000,4.7e8"]}}`))
	}))

	result, err := client.Call(context.Background(), adapter.Query{
		Kind:   adapter.KindStockPrice,
		Symbol: "SH600519",
		Period: "weekly",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	first := result.Rows[0]
	if first["date"] != "2024-01-05" {
		t.Errorf("expected date 2024-01-05, got %v", first["date"])
	}
	if first["close"] != 1700.5 {
		t.Errorf("expected close 1700.5, got %v", first["close"])
	}
	if first["volume"] != 32000.0 {
		t.Errorf("expected volume 32000, got %v", first["volume"])
	}
}

func TestStockPriceRejectsBadKline(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"klines":["2024-01-05,notanumber,1,1,1,1,1"]}}`))
	}))

	_, err := client.Call(context.Background(), adapter.Query{Kind: adapter.KindStockPrice, Symbol: "600519"})
	var aerr *adapter.Error
	if !errors.As(err, &aerr) || aerr.Kind != adapter.FailMalformed {
		t.Fatalf("expected malformed_response, got %v", err)
	}
}

func TestRateLimitedStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.Call(context.Background(), adapter.Query{Kind: adapter.KindStockInfo, Symbol: "600519"})
	var aerr *adapter.Error
	if !errors.As(err, &aerr) || aerr.Kind != adapter.FailRateLimited {
		t.Fatalf("expected rate_limited for 429, got %v", err)
	}
}

func TestFinancialReportFiltersAndTruncates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "SH600519" {
			t.Errorf("expected SH600519, got %q", got)
		}
		w.Write([]byte(`{"data":{
			"balance":[{"period":"2024Q4"},{"period":"2024Q3"},{"period":"2024Q2"}],
			"income":[{"period":"2024Q4"}],
			"cashflow":[{"period":"2024Q4"}]
		}}`))
	}))

	result, err := client.Call(context.Background(), adapter.Query{
		Kind:       adapter.KindFinancialReport,
		Symbol:     "600519",
		ReportType: "balance",
		Periods:    2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Reports) != 1 {
		t.Fatalf("expected only the requested table, got %v", result.Reports)
	}
	if got := len(result.Reports["balance_sheet"]); got != 2 {
		t.Errorf("expected truncation to 2 periods, got %d", got)
	}
}

func TestFinancialReportAll(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"balance":[{}],"income":[{}],"cashflow":[{}]}}`))
	}))

	result, err := client.Call(context.Background(), adapter.Query{
		Kind:       adapter.KindFinancialReport,
		Symbol:     "000001",
		ReportType: "all",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, table := range []string{"balance_sheet", "income_statement", "cash_flow"} {
		if _, ok := result.Reports[table]; !ok {
			t.Errorf("expected table %s in all-report result", table)
		}
	}
}

func TestGBKResponseDecoded(t *testing.T) {
	gbkName, err := simplifiedchinese.GB18030.NewEncoder().String("贵州茅台")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=gbk")
		w.Write([]byte(`{"data":{"f58":"` + gbkName + `"}}`))
	}))

	result, err := client.Call(context.Background(), adapter.Query{Kind: adapter.KindStockInfo, Symbol: "600519"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fields["name"] != "贵州茅台" {
		t.Errorf("expected GBK payload decoded to UTF-8, got %q", result.Fields["name"])
	}
}

func TestIndustryRankings(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("metric"); got != "pe" {
			t.Errorf("expected metric pe, got %q", got)
		}
		w.Write([]byte(`{"data":{"ranks":[{"symbol":"600519","rank":1}]}}`))
	}))

	result, err := client.Call(context.Background(), adapter.Query{
		Kind:     adapter.KindIndustry,
		Industry: "Beverages",
		Metric:   "pe",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0]["rank"] != 1.0 {
		t.Errorf("expected one ranked row, got %v", result.Rows)
	}
}
