package eastmoney

import "testing"

func TestSecid(t *testing.T) {
	cases := []struct {
		symbol string
		market string
		want   string
	}{
		{"600519", "", "1.600519"},
		{"SH600519", "", "1.600519"},
		{"000001", "", "0.000001"},
		{"SZ000001", "", "0.000001"},
		{"300750", "", "0.300750"},
		{"00700", "", "116.00700"},
		{"HK00700", "", "116.00700"},
		{"00700", "HK", "116.00700"},
		{"600519", "A", "1.600519"},
		{" sh600519 ", "", "1.600519"},
	}

	for _, tc := range cases {
		if got := secid(tc.symbol, tc.market); got != tc.want {
			t.Errorf("secid(%q, %q): expected %q, got %q", tc.symbol, tc.market, tc.want, got)
		}
	}
}

func TestReportSymbol(t *testing.T) {
	cases := []struct {
		symbol string
		want   string
	}{
		{"600519", "SH600519"},
		{"SH600519", "SH600519"},
		{"000001", "SZ000001"},
		{"300750", "SZ300750"},
		{"00700", "00700"},
	}

	for _, tc := range cases {
		if got := reportSymbol(tc.symbol); got != tc.want {
			t.Errorf("reportSymbol(%q): expected %q, got %q", tc.symbol, tc.want, got)
		}
	}
}
