package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesFromRows(t *testing.T) {
	rows := []map[string]interface{}{
		{"date": "2024-01-02", "open": 10.0, "close": 11.0, "high": 11.5, "low": 9.8, "volume": 1000.0},
		{"date": "2024-01-03", "open": 11.0, "close": 10.5, "high": 11.2, "low": 10.4},
	}

	s, err := SeriesFromRows(rows)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, s.Dates)
	assert.Equal(t, 11.0, s.Close[0])
	assert.Equal(t, 0.0, s.Volume[1], "missing volume defaults to zero")
}

func TestSeriesFromRowsRejectsMissingOHLC(t *testing.T) {
	_, err := SeriesFromRows([]map[string]interface{}{{"date": "2024-01-02", "open": 10.0}})
	assert.Error(t, err)

	_, err = SeriesFromRows(nil)
	assert.Error(t, err)
}

func TestMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := MA(values, 3)

	assert.Equal(t, 0.0, got[0], "positions before window fills stay zero")
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 2.0, got[2])
	assert.Equal(t, 3.0, got[3])
	assert.Equal(t, 4.0, got[4])
}

func TestEMAConverges(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 10
	}

	got := EMA(values, 12)
	assert.InDelta(t, 10.0, got[49], 1e-9, "EMA of a constant series is the constant")
}

func TestMACDFlatSeriesIsZero(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100
	}

	macd, signal, histogram := MACD(values)
	assert.InDelta(t, 0.0, macd[59], 1e-9)
	assert.InDelta(t, 0.0, signal[59], 1e-9)
	assert.InDelta(t, 0.0, histogram[59], 1e-9)
}

func TestRSISaturatesOnMonotonicGains(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(100 + i)
	}

	got := RSI(values, 14)
	assert.Equal(t, 100.0, got[29], "all-gain window should saturate at 100")
	assert.Equal(t, 0.0, got[5], "positions before the window stay zero")
}

func TestRSIMidrange(t *testing.T) {
	values := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11}
	got := RSI(values, 14)

	last := got[15]
	assert.Greater(t, last, 30.0)
	assert.Less(t, last, 70.0)
}

func TestBollingerBands(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 50
	}

	middle, upper, lower := Bollinger(values, 20, 2)
	assert.Equal(t, 50.0, middle[24])
	assert.Equal(t, 50.0, upper[24], "zero variance collapses the bands")
	assert.Equal(t, 50.0, lower[24])
	assert.Equal(t, 0.0, middle[10], "positions before window fills stay zero")
}

func TestBollingerBandsSpread(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 50 + 5*math.Sin(float64(i))
	}

	middle, upper, lower := Bollinger(values, 20, 2)
	i := 39
	assert.Greater(t, upper[i], middle[i])
	assert.Less(t, lower[i], middle[i])
	assert.InDelta(t, middle[i]-lower[i], upper[i]-middle[i], 0.02, "bands are symmetric around the middle")
}

func TestKDJBounds(t *testing.T) {
	s := &Series{
		High:  []float64{12, 13, 14, 13, 12, 13, 14, 15, 14, 13, 14, 15},
		Low:   []float64{10, 11, 12, 11, 10, 11, 12, 13, 12, 11, 12, 13},
		Close: []float64{11, 12, 13, 12, 11, 12, 13, 14, 13, 12, 13, 14},
	}
	s.Dates = make([]string, len(s.Close))
	s.Open = make([]float64, len(s.Close))
	s.Volume = make([]float64, len(s.Close))

	k, d, _ := KDJ(s, 9, 3)
	for i := range k {
		assert.GreaterOrEqual(t, k[i], 0.0)
		assert.LessOrEqual(t, k[i], 100.0)
		assert.GreaterOrEqual(t, d[i], 0.0)
		assert.LessOrEqual(t, d[i], 100.0)
	}
}

func TestIndicatorsSelectsRequested(t *testing.T) {
	rows := make([]map[string]interface{}, 70)
	for i := range rows {
		price := 100 + float64(i%7)
		rows[i] = map[string]interface{}{
			"date": "2024-01-02", "open": price, "close": price + 0.5,
			"high": price + 1, "low": price - 1, "volume": 1000.0,
		}
	}
	s, err := SeriesFromRows(rows)
	require.NoError(t, err)

	out := Indicators(s, []string{"MA", "BOLL"})
	assert.Contains(t, out, "MA")
	assert.Contains(t, out, "BOLL")
	assert.NotContains(t, out, "MACD")

	ma := out["MA"].(map[string]interface{})
	for _, key := range []string{"MA5", "MA10", "MA20", "MA60"} {
		assert.Contains(t, ma, key)
	}
}
