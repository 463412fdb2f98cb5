package analysis

import (
	"fmt"
	"math"
)

// Series is OHLCV data in chronological order, extracted from the
// normalized price rows the adapter returns.
type Series struct {
	Dates  []string
	Open   []float64
	Close  []float64
	High   []float64
	Low    []float64
	Volume []float64
}

func (s *Series) Len() int {
	return len(s.Close)
}

// SeriesFromRows builds a Series from normalized price rows. Rows missing
// OHLC fields are rejected, since every indicator needs at least those.
func SeriesFromRows(rows []map[string]interface{}) (*Series, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty price series")
	}

	s := &Series{
		Dates:  make([]string, 0, len(rows)),
		Open:   make([]float64, 0, len(rows)),
		Close:  make([]float64, 0, len(rows)),
		High:   make([]float64, 0, len(rows)),
		Low:    make([]float64, 0, len(rows)),
		Volume: make([]float64, 0, len(rows)),
	}

	for i, row := range rows {
		date, _ := row["date"].(string)
		open, ok1 := toFloat(row["open"])
		closePx, ok2 := toFloat(row["close"])
		high, ok3 := toFloat(row["high"])
		low, ok4 := toFloat(row["low"])
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, fmt.Errorf("price row %d missing OHLC fields", i)
		}

		volume, _ := toFloat(row["volume"])

		s.Dates = append(s.Dates, date)
		s.Open = append(s.Open, open)
		s.Close = append(s.Close, closePx)
		s.High = append(s.High, high)
		s.Low = append(s.Low, low)
		s.Volume = append(s.Volume, volume)
	}

	return s, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Indicators computes the requested indicator set over a series. Unknown
// names are skipped silently; the tool layer constrains them via its enum.
func Indicators(s *Series, names []string) map[string]interface{} {
	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		switch name {
		case "MA":
			out["MA"] = map[string]interface{}{
				"MA5":  MA(s.Close, 5),
				"MA10": MA(s.Close, 10),
				"MA20": MA(s.Close, 20),
				"MA60": MA(s.Close, 60),
			}
		case "MACD":
			macd, signal, histogram := MACD(s.Close)
			out["MACD"] = map[string]interface{}{
				"macd_line":   macd,
				"signal_line": signal,
				"histogram":   histogram,
			}
		case "RSI":
			out["RSI"] = RSI(s.Close, 14)
		case "KDJ":
			k, d, j := KDJ(s, 9, 3)
			out["KDJ"] = map[string]interface{}{"k": k, "d": d, "j": j}
		case "BOLL":
			middle, upper, lower := Bollinger(s.Close, 20, 2)
			out["BOLL"] = map[string]interface{}{
				"middle_band": middle,
				"upper_band":  upper,
				"lower_band":  lower,
			}
		}
	}
	return out
}

// MA is a simple moving average. Positions before the window has filled are
// NaN-free: they are omitted by convention and carried as zero.
func MA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 || len(values) == 0 {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = round2(sum / float64(window))
		}
	}
	return out
}

// EMA is an exponential moving average seeded from the first value,
// multiplier 2/(span+1).
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	k := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACD with the conventional 12/26/9 spans.
func MACD(closes []float64) (macd, signal, histogram []float64) {
	ema12 := EMA(closes, 12)
	ema26 := EMA(closes, 26)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = round4(ema12[i] - ema26[i])
	}

	signal = EMA(macd, 9)
	histogram = make([]float64, len(closes))
	for i := range closes {
		signal[i] = round4(signal[i])
		histogram[i] = round4(macd[i] - signal[i])
	}
	return macd, signal, histogram
}

// RSI over the given window using simple rolling averages of gains and
// losses. Flat windows (no losses) saturate at 100.
func RSI(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) < 2 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := maRaw(gains, window)
	avgLoss := maRaw(losses, window)
	for i := window; i < len(closes); i++ {
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = round2(100 - 100/(1+rs))
	}
	return out
}

// maRaw is MA without rounding, used as a building block.
func maRaw(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// KDJ stochastic oscillator with smoothing factor 1/m (conventionally
// 9-day window, m=3).
func KDJ(s *Series, window, m int) (k, d, j []float64) {
	n := s.Len()
	k = make([]float64, n)
	d = make([]float64, n)
	j = make([]float64, n)
	if n == 0 {
		return
	}

	prevK, prevD := 50.0, 50.0
	for i := 0; i < n; i++ {
		lo, hi := s.Low[i], s.High[i]
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		for t := start; t <= i; t++ {
			lo = math.Min(lo, s.Low[t])
			hi = math.Max(hi, s.High[t])
		}

		rsv := 50.0
		if hi > lo {
			rsv = (s.Close[i] - lo) / (hi - lo) * 100
		}

		curK := (prevK*float64(m-1) + rsv) / float64(m)
		curD := (prevD*float64(m-1) + curK) / float64(m)
		k[i] = round2(curK)
		d[i] = round2(curD)
		j[i] = round2(3*curK - 2*curD)
		prevK, prevD = curK, curD
	}
	return k, d, j
}

// Bollinger bands: window-period SMA with bands at stdDev standard
// deviations.
func Bollinger(closes []float64, window int, stdDev float64) (middle, upper, lower []float64) {
	n := len(closes)
	middle = make([]float64, n)
	upper = make([]float64, n)
	lower = make([]float64, n)

	sma := maRaw(closes, window)
	for i := window - 1; i < n; i++ {
		var variance float64
		for t := i - window + 1; t <= i; t++ {
			diff := closes[t] - sma[i]
			variance += diff * diff
		}
		sd := math.Sqrt(variance / float64(window))

		middle[i] = round2(sma[i])
		upper[i] = round2(sma[i] + stdDev*sd)
		lower[i] = round2(sma[i] - stdDev*sd)
	}
	return middle, upper, lower
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
