package graph

import (
	"math"
	"strconv"
)

// niceSteps are the mantissas a tick step may take, times a power of ten.
var niceSteps = []float64{1, 2, 2.5, 5, 10}

const (
	snapEpsilon    = 1e-9
	snapRelEpsilon = 1e-14
	maxTicks       = 100

	// tickDigits is how many decimals below the step's own exponent a tick
	// keeps when float drift is stripped.
	tickDigits = 3

	// flatRangeRatio sizes the range of all-equal data relative to its
	// magnitude, so the widening step survives float precision.
	flatRangeRatio = 1e-9
)

// AxisScale is a value range rounded out to human-friendly tick steps.
type AxisScale struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	NiceMin float64 `json:"nice_min"`
	NiceMax float64 `json:"nice_max"`
}

// NiceScale computes a scale of roughly targetTicks intervals covering
// [min, max]. A zero range is treated as 1, or as a billionth of the value
// when that is larger, and an all-equal data set is widened by one step on
// each side so the line sits in the middle.
func NiceScale(min, max float64, targetTicks int) AxisScale {
	if targetTicks <= 0 {
		targetTicks = 5
	}
	if min > max {
		min, max = max, min
	}

	rng := max - min
	if rng == 0 {
		rng = math.Max(1, math.Abs(min)*flatRangeRatio)
	}
	step := niceStep(rng / float64(targetTicks))

	niceMin := snapFloor(min/step) * step
	niceMax := snapCeil(max/step) * step
	if niceMax-niceMin < step*snapEpsilon {
		niceMin -= step
		niceMax += step
	}

	// Snapping may leave the bounds an ulp inside the data.
	return AxisScale{
		Min:     min,
		Max:     max,
		Step:    step,
		NiceMin: math.Min(niceMin, min),
		NiceMax: math.Max(niceMax, max),
	}
}

// niceStep snaps rough up to the smallest {1,2,2.5,5,10}·10^k >= rough.
func niceStep(rough float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(rough)))
	for _, c := range niceSteps {
		if s := c * mag; s >= rough {
			return s
		}
	}
	return mag * 10
}

func snapFloor(q float64) float64 {
	if r := math.Round(q); nearInteger(q, r) {
		return r
	}
	return math.Floor(q)
}

func snapCeil(q float64) float64 {
	if r := math.Round(q); nearInteger(q, r) {
		return r
	}
	return math.Ceil(q)
}

// nearInteger reports whether q is r up to float noise, which grows with
// the magnitude of q.
func nearInteger(q, r float64) bool {
	return math.Abs(q-r) < snapEpsilon+math.Abs(q)*snapRelEpsilon
}

// Span returns NiceMax-NiceMin, or 1 when the scale is degenerate.
func (s AxisScale) Span() float64 {
	span := s.NiceMax - s.NiceMin
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 1
	}
	return span
}

// Ticks returns the tick values from NiceMin to NiceMax inclusive.
func (s AxisScale) Ticks() []float64 {
	if s.Step <= 0 || math.IsNaN(s.Step) || math.IsInf(s.Step, 0) {
		return []float64{s.NiceMin}
	}
	n := int(math.Floor((s.NiceMax-s.NiceMin)/s.Step + 0.01))
	if n < 0 {
		n = 0
	}
	if n > maxTicks {
		n = maxTicks
	}

	ticks := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		v := s.NiceMin + float64(i)*s.Step
		if v > s.NiceMax+s.Step*0.01 {
			break
		}
		v = roundTick(v, s.Step)
		ticks = append(ticks, math.Min(math.Max(v, s.NiceMin), s.NiceMax))
	}
	return ticks
}

// roundTick strips float drift from a tick value by rounding it to a few
// decimals past the precision of step. Values too large to carry a
// fractional part are returned as is.
func roundTick(v, step float64) float64 {
	if math.Abs(v) >= 1e15 || step <= 0 {
		return v
	}
	prec := int(-math.Floor(math.Log10(step))) + tickDigits
	if prec < 0 {
		prec = 0
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', prec, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// XTicks returns the point indices that get an x-axis label: at most
// maxLabels indices evenly spaced over [0, maxLen), always ending on the
// last index.
func XTicks(maxLen, maxLabels int) []int {
	if maxLen <= 0 {
		return nil
	}
	if maxLabels < 2 {
		maxLabels = 2
	}

	step := 1
	if maxLen > 1 {
		step = int(math.Ceil(float64(maxLen-1) / float64(maxLabels-1)))
		if step < 1 {
			step = 1
		}
	}

	var ticks []int
	for i := 0; i < maxLen; i += step {
		ticks = append(ticks, i)
	}
	last := maxLen - 1
	if ticks[len(ticks)-1] != last {
		if len(ticks) >= maxLabels {
			ticks[len(ticks)-1] = last
		} else {
			ticks = append(ticks, last)
		}
	}
	return ticks
}
