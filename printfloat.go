package symbolic

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// MaxSignificantDigits bounds the digits requested from CreateLayout.
const MaxSignificantDigits = 30

// shortestDecimalLimit is the decimal exponent from which DecimalFormat
// switches to scientific notation when the shortest representation is
// requested.
const shortestDecimalLimit = 15

// formatFloat renders x in format ff with the given number of significant
// digits. digits ≤ 0 requests the shortest text that identifies x at its
// precision.
func formatFloat(x *big.Float, ff FloatFormat, digits int) string {
	if x.IsInf() {
		if x.Signbit() {
			return "-∞"
		}
		return "∞"
	}
	if x.Sign() == 0 {
		return "0"
	}
	digits = min(digits, MaxSignificantDigits)
	s := x.Text('e', max(digits-1, -1))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	m, e, _ := strings.Cut(s, "e")
	exp, err := strconv.Atoi(e)
	if err != nil {
		panic("symbolic: bad float text " + s)
	}
	digs := strings.TrimRight(strings.Replace(m, ".", "", 1), "0")
	if digs == "" {
		digs = "0"
	}
	var r string
	switch ff {
	case DecimalFormat:
		limit := digits
		if digits <= 0 {
			limit = shortestDecimalLimit
		}
		if exp < -4 || exp >= limit {
			r = scientific(digs, exp)
		} else {
			r = fixed(digs, exp)
		}
	case ScientificFormat:
		r = scientific(digs, exp)
	case EngineeringFormat:
		shift := exp % 3
		if shift < 0 {
			shift += 3
		}
		r = fixed(digs, shift)
		if exp != shift {
			r += "E" + strconv.Itoa(exp-shift)
		}
	default:
		panic("symbolic: invalid float format " + ff.String())
	}
	if neg {
		return "-" + r
	}
	return r
}

// fixed places the decimal point in the significant digits digs of a number
// with decimal exponent exp.
func fixed(digs string, exp int) string {
	switch {
	case exp < 0:
		return "0." + strings.Repeat("0", -exp-1) + digs
	case len(digs) <= exp+1:
		return digs + strings.Repeat("0", exp+1-len(digs))
	default:
		return digs[:exp+1] + "." + digs[exp+1:]
	}
}

func scientific(digs string, exp int) string {
	r := digs[:1]
	if len(digs) > 1 {
		r += "." + digs[1:]
	}
	if exp == 0 {
		return r
	}
	return r + "E" + strconv.Itoa(exp)
}

// floatText formats a float64 payload. NaN has no number form.
func floatText(f float64, ff FloatFormat, digits int) string {
	if math.IsNaN(f) {
		return "undef"
	}
	return formatFloat(big.NewFloat(f), ff, digits)
}

// decimalText formats a Decimal payload at twice double precision.
func decimalText(n node, ff FloatFormat, digits int) string {
	x := new(big.Float).SetPrec(128).SetRat(decimalRat(n))
	return formatFloat(x, ff, digits)
}
