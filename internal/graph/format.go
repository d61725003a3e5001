package graph

import (
	"math"
	"strconv"
)

// tickPrecision is the number of significant digits kept in axis labels.
const tickPrecision = 4

// FormatTick renders an axis value with four significant digits and no
// trailing zeros, so float noise like 0.30000000000000004 prints as "0.3".
func FormatTick(v float64) string {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', tickPrecision, 64), 64)
	if err != nil {
		return strconv.FormatFloat(v, 'g', tickPrecision, 64)
	}
	if r == 0 {
		return "0" // also folds -0
	}

	abs := math.Abs(r)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(r, 'g', -1, 64)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
