package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/adapter/ratelimit"
	"github.com/quantmesh/finmcp/internal/logger"
)

var log = logger.ForComponent("eastmoney")

const defaultUserAgent = "finmcp/0.3"

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// Client talks to the EastMoney quote endpoints and normalizes their
// payloads into the provider-agnostic adapter shapes. It holds no state
// beyond the HTTP connection pool; the lifecycle manager owns Connect and
// Close.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.TokenBucket
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.NewTokenBucket(cfg.RatePerSecond, cfg.Burst),
	}
}

// Connect probes the provider once so a misconfigured base URL surfaces at
// initialization instead of on the first tool call.
func (c *Client) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/qt/ping", nil)
	if err != nil {
		return adapter.NewError(adapter.FailUnreachable, "invalid provider base URL", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return adapter.Classify(err, "provider probe failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return adapter.NewError(adapter.FailUnreachable,
			fmt.Sprintf("provider probe returned status %d", resp.StatusCode), nil)
	}

	log.Debug("provider probe ok", "base_url", c.baseURL)
	return nil
}

func (c *Client) Call(ctx context.Context, q adapter.Query) (*adapter.Result, error) {
	switch q.Kind {
	case adapter.KindStockInfo:
		return c.stockInfo(ctx, q)
	case adapter.KindStockPrice:
		return c.stockPrice(ctx, q)
	case adapter.KindFinancialReport:
		return c.financialReport(ctx, q)
	case adapter.KindIndustry:
		return c.industry(ctx, q)
	default:
		return nil, adapter.NewError(adapter.FailMalformed,
			fmt.Sprintf("unsupported query kind %q", q.Kind), nil)
	}
}

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// getJSON performs one rate-limited GET and decodes the provider envelope.
// All transport and payload faults come back as *adapter.Error.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, adapter.Classify(ctx.Err(), "rate limiter wait")
		}
		return nil, adapter.NewError(adapter.FailRateLimited, "rate limiter saturated", err)
	}

	u := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, adapter.NewError(adapter.FailUnreachable, "build request", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, adapter.Classify(err, "provider request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, adapter.NewError(adapter.FailRateLimited, "provider throttled the request", nil)
	case resp.StatusCode >= 500:
		return nil, adapter.NewError(adapter.FailUnreachable,
			fmt.Sprintf("provider returned status %d", resp.StatusCode), nil)
	default:
		return nil, adapter.NewError(adapter.FailMalformed,
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, path), nil)
	}

	var env envelope
	if err := json.NewDecoder(bodyReader(resp)).Decode(&env); err != nil {
		return nil, adapter.NewError(adapter.FailMalformed, "undecodable provider payload", err)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, adapter.NewError(adapter.FailUnknownSymbol, "provider returned no data", nil)
	}

	return env.Data, nil
}

// infoFieldNames maps the provider's numeric field codes onto stable names.
var infoFieldNames = map[string]string{
	"f57":  "symbol",
	"f58":  "name",
	"f43":  "price",
	"f116": "market_cap",
	"f117": "float_market_cap",
	"f162": "pe_ratio",
	"f167": "pb_ratio",
	"f84":  "total_shares",
	"f85":  "float_shares",
	"f127": "industry",
}

func (c *Client) stockInfo(ctx context.Context, q adapter.Query) (*adapter.Result, error) {
	query := url.Values{}
	query.Set("secid", secid(q.Symbol, q.Market))
	fields := make([]string, 0, len(infoFieldNames))
	for code := range infoFieldNames {
		fields = append(fields, code)
	}
	query.Set("fields", strings.Join(fields, ","))

	data, err := c.getJSON(ctx, "/api/qt/stock/get", query)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, adapter.NewError(adapter.FailMalformed, "stock info payload not an object", err)
	}

	out := make(map[string]interface{}, len(raw))
	for code, value := range raw {
		if name, ok := infoFieldNames[code]; ok {
			out[name] = value
		}
	}
	if len(out) == 0 {
		return nil, adapter.NewError(adapter.FailUnknownSymbol,
			fmt.Sprintf("no info for symbol %s", q.Symbol), nil)
	}

	return &adapter.Result{Fields: out}, nil
}

var periodKlt = map[string]string{
	"daily":   "101",
	"weekly":  "102",
	"monthly": "103",
}

func (c *Client) stockPrice(ctx context.Context, q adapter.Query) (*adapter.Result, error) {
	klt, ok := periodKlt[q.Period]
	if !ok {
		klt = periodKlt["daily"]
	}

	start := q.StartDate
	if start == "" {
		start = time.Now().AddDate(-1, 0, 0).Format("20060102")
	}
	end := q.EndDate
	if end == "" {
		end = time.Now().Format("20060102")
	}

	query := url.Values{}
	query.Set("secid", secid(q.Symbol, q.Market))
	query.Set("klt", klt)
	query.Set("fqt", "0")
	query.Set("beg", start)
	query.Set("end", end)
	query.Set("fields1", "f1,f2,f3")
	query.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")

	data, err := c.getJSON(ctx, "/api/qt/stock/kline/get", query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Klines []string `json:"klines"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, adapter.NewError(adapter.FailMalformed, "kline payload not decodable", err)
	}

	rows := make([]map[string]interface{}, 0, len(payload.Klines))
	for _, line := range payload.Klines {
		row, err := parseKline(line)
		if err != nil {
			return nil, adapter.NewError(adapter.FailMalformed, "bad kline row", err)
		}
		rows = append(rows, row)
	}

	return &adapter.Result{Rows: rows}, nil
}

// parseKline splits one "date,open,close,high,low,volume,amount" row.
func parseKline(line string) (map[string]interface{}, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 6 {
		return nil, fmt.Errorf("expected at least 6 fields, got %d in %q", len(parts), line)
	}

	names := []string{"open", "close", "high", "low", "volume", "amount"}
	row := map[string]interface{}{"date": parts[0]}
	for i, name := range names {
		if i+1 >= len(parts) {
			break
		}
		v, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		row[name] = v
	}
	return row, nil
}

var reportTables = map[string]string{
	"balance":  "balance_sheet",
	"income":   "income_statement",
	"cashflow": "cash_flow",
}

func (c *Client) financialReport(ctx context.Context, q adapter.Query) (*adapter.Result, error) {
	periods := q.Periods
	if periods <= 0 {
		periods = 4
	}

	query := url.Values{}
	query.Set("symbol", reportSymbol(q.Symbol))
	query.Set("type", q.ReportType)
	query.Set("periods", strconv.Itoa(periods))

	data, err := c.getJSON(ctx, "/api/finance/statements", query)
	if err != nil {
		return nil, err
	}

	var payload map[string][]map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, adapter.NewError(adapter.FailMalformed, "statement payload not decodable", err)
	}

	reports := make(map[string][]map[string]interface{})
	for wire, name := range reportTables {
		if q.ReportType != "all" && q.ReportType != wire {
			continue
		}
		table := payload[wire]
		if len(table) > periods {
			table = table[:periods]
		}
		reports[name] = table
	}

	return &adapter.Result{Reports: reports}, nil
}

func (c *Client) industry(ctx context.Context, q adapter.Query) (*adapter.Result, error) {
	query := url.Values{}
	query.Set("industry", q.Industry)
	if q.Metric != "" {
		query.Set("metric", q.Metric)
	}

	data, err := c.getJSON(ctx, "/api/qt/industry/rank", query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Ranks []map[string]interface{} `json:"ranks"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, adapter.NewError(adapter.FailMalformed, "industry payload not decodable", err)
	}

	return &adapter.Result{Rows: payload.Ranks}, nil
}
