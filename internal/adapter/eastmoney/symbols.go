package eastmoney

import "strings"

// Market exchange prefixes used in secids.
const (
	secidShanghai = "1"
	secidShenzhen = "0"
	secidHongKong = "116"
)

// standardizeSymbol strips any exchange prefix and resolves the market from
// the symbol shape when the caller did not say: 5-digit codes are Hong Kong,
// codes starting with 0 or 3 are Shenzhen, everything else defaults to
// Shanghai.
func standardizeSymbol(symbol, market string) (code, resolvedMarket string) {
	code = strings.ToUpper(strings.TrimSpace(symbol))
	code = strings.TrimPrefix(code, "SH")
	code = strings.TrimPrefix(code, "SZ")
	code = strings.TrimPrefix(code, "HK")

	if market == "HK" || (market == "" && len(code) == 5) {
		return code, "HK"
	}
	return code, "A"
}

// secid builds the provider's exchange-qualified identifier.
func secid(symbol, market string) string {
	code, resolved := standardizeSymbol(symbol, market)

	if resolved == "HK" {
		return secidHongKong + "." + code
	}
	if strings.HasPrefix(code, "0") || strings.HasPrefix(code, "3") {
		return secidShenzhen + "." + code
	}
	return secidShanghai + "." + code
}

// reportSymbol is the SH/SZ-prefixed form the statement endpoints expect.
func reportSymbol(symbol string) string {
	code, resolved := standardizeSymbol(symbol, "")
	if resolved == "HK" {
		return code
	}
	if strings.HasPrefix(code, "0") || strings.HasPrefix(code, "3") {
		return "SZ" + code
	}
	return "SH" + code
}
