package graph

import (
	"math"
	"reflect"
	"testing"
)

func isNiceStep(step float64) bool {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return false
	}
	k := math.Floor(math.Log10(step))
	m := step / math.Pow(10, k)
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		if math.Abs(m-c) < 1e-9*c {
			return true
		}
	}
	return false
}

func TestNiceScale(t *testing.T) {
	tests := []struct {
		name             string
		min, max         float64
		step             float64
		niceMin, niceMax float64
	}{
		{"one to five", 1, 5, 1, 1, 5},
		{"one to four", 1, 4, 1, 1, 4},
		{"fractional", 0.1, 0.9, 0.2, 0, 1},
		{"hundreds", 13, 487, 100, 0, 500},
		{"negative", -7, 3, 2, -8, 4},
		{"quarter steps", 0, 1.1, 0.25, 0, 1.25},
		{"equal values widen", 5, 5, 0.2, 4.8, 5.2},
		{"zero", 0, 0, 0.2, -0.2, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NiceScale(tt.min, tt.max, 5)
			if math.Abs(s.Step-tt.step) > 1e-9 {
				t.Errorf("step = %v, want %v", s.Step, tt.step)
			}
			if math.Abs(s.NiceMin-tt.niceMin) > 1e-9 {
				t.Errorf("niceMin = %v, want %v", s.NiceMin, tt.niceMin)
			}
			if math.Abs(s.NiceMax-tt.niceMax) > 1e-9 {
				t.Errorf("niceMax = %v, want %v", s.NiceMax, tt.niceMax)
			}
		})
	}
}

func TestNiceScaleProperty(t *testing.T) {
	values := []float64{
		-1e9, -12345.678, -250, -3, -0.5, -0.001, 0, 1e-6, 0.003, 0.2, 1, 2.5,
		7, 42, 99.99, 100, 1001, 65536, 3.3e7, 1e12,
	}
	for _, a := range values {
		for _, b := range values {
			if a >= b {
				continue
			}
			s := NiceScale(a, b, 5)
			if !isNiceStep(s.Step) {
				t.Errorf("NiceScale(%v, %v): step %v not in the nice set", a, b, s.Step)
			}
			if s.NiceMin > a {
				t.Errorf("NiceScale(%v, %v): niceMin %v > min", a, b, s.NiceMin)
			}
			if s.NiceMax < b {
				t.Errorf("NiceScale(%v, %v): niceMax %v < max", a, b, s.NiceMax)
			}
			if s.Span() <= 0 {
				t.Errorf("NiceScale(%v, %v): span %v", a, b, s.Span())
			}
		}
	}
}

func TestNiceScaleSwapsInvertedRange(t *testing.T) {
	s := NiceScale(5, 1, 5)
	if s.Min != 1 || s.Max != 5 {
		t.Errorf("min/max = %v/%v, want 1/5", s.Min, s.Max)
	}
}

func TestTicks(t *testing.T) {
	got := NiceScale(0.1, 0.9, 5).Ticks()
	want := []float64{0, 0.2, 0.4, 0.6, 0.8, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ticks = %v, want %v", got, want)
	}

	got = NiceScale(5, 5, 5).Ticks()
	want = []float64{4.8, 5, 5.2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ticks = %v, want %v", got, want)
	}
}

func TestTicksHugeValuesTerminate(t *testing.T) {
	s := NiceScale(1e300, 1e300, 5)
	ticks := s.Ticks()
	if len(ticks) == 0 || len(ticks) > maxTicks+1 {
		t.Fatalf("got %d ticks", len(ticks))
	}
	for _, v := range ticks {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite tick %v", v)
		}
	}
}

func TestTicksFollowStepPrecision(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		step     float64
	}{
		{"1e-11 steps", 1e-11, 5e-11, 1e-11},
		{"2.5e-10 steps", 0, 1.1e-9, 2.5e-10},
		{"tenths", 0.1, 0.9, 0.2},
		{"large", 3e20, 7e20, 1e20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NiceScale(tt.min, tt.max, 5)
			if math.Abs(s.Step-tt.step) > tt.step*1e-9 {
				t.Fatalf("step = %v, want %v", s.Step, tt.step)
			}
			ticks := s.Ticks()
			if len(ticks) < 2 {
				t.Fatalf("ticks = %v", ticks)
			}
			for i, v := range ticks {
				if v < s.NiceMin || v > s.NiceMax {
					t.Errorf("tick %v outside [%v, %v]", v, s.NiceMin, s.NiceMax)
				}
				want := s.NiceMin + float64(i)*s.Step
				if math.Abs(v-want) > s.Step*1e-3 {
					t.Errorf("tick %d = %v, want %v", i, v, want)
				}
				if i > 0 && v <= ticks[i-1] {
					t.Errorf("ticks not increasing: %v", ticks)
				}
			}
		})
	}
}

func TestNiceScaleFlatHugeValues(t *testing.T) {
	for _, v := range []float64{1e300, -1e300, 3.7e250, 1e15} {
		s := NiceScale(v, v, 5)
		if !(s.NiceMin < v && v < s.NiceMax) {
			t.Errorf("NiceScale(%v, %v) = [%v, %v], want v strictly inside", v, v, s.NiceMin, s.NiceMax)
			continue
		}
		mid := (s.NiceMax - s.NiceMin) / 2
		if d := math.Abs((v - s.NiceMin) - mid); d > mid*1e-3 {
			t.Errorf("NiceScale(%v, %v): value off center by %v", v, v, d)
		}
	}
}

func TestXTicks(t *testing.T) {
	tests := []struct {
		maxLen, maxLabels int
		want              []int
	}{
		{0, 7, nil},
		{1, 7, []int{0}},
		{2, 7, []int{0, 1}},
		{5, 7, []int{0, 1, 2, 3, 4}},
		{8, 7, []int{0, 2, 4, 6, 7}},
		{20, 7, []int{0, 4, 8, 12, 16, 19}},
	}
	for _, tt := range tests {
		got := XTicks(tt.maxLen, tt.maxLabels)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("XTicks(%d, %d) = %v, want %v", tt.maxLen, tt.maxLabels, got, tt.want)
		}
	}
}

func TestXTicksBounds(t *testing.T) {
	for n := 1; n <= 200; n++ {
		for labels := 2; labels <= 10; labels++ {
			got := XTicks(n, labels)
			if len(got) > labels {
				t.Fatalf("XTicks(%d, %d): %d labels", n, labels, len(got))
			}
			if got[0] != 0 || got[len(got)-1] != n-1 {
				t.Fatalf("XTicks(%d, %d) = %v: must span first to last", n, labels, got)
			}
			for i := 1; i < len(got); i++ {
				if got[i] <= got[i-1] {
					t.Fatalf("XTicks(%d, %d) = %v: not increasing", n, labels, got)
				}
			}
		}
	}
}

func TestLayoutMapping(t *testing.T) {
	spec := ChartSpec{Series: []Series{{Values: []float64{1, 3, 2, 5, 4}}}}
	l := NewLayout(spec, DefaultOptions())

	if l.X(0) != 45 || l.X(4) != 325 {
		t.Errorf("X range = %v..%v, want 45..325", l.X(0), l.X(4))
	}
	if l.Y(5) != 15 || l.Y(1) != 165 {
		t.Errorf("Y range = %v..%v, want 15..165", l.Y(5), l.Y(1))
	}
	if l.Y(5) >= l.Y(4) {
		t.Error("larger values must map higher")
	}
}

func TestLayoutSinglePoint(t *testing.T) {
	spec := ChartSpec{Series: []Series{{Values: []float64{7}}}}
	l := NewLayout(spec, DefaultOptions())
	x, y := l.X(0), l.Y(7)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		t.Fatalf("non-finite point (%v, %v)", x, y)
	}
	if y <= l.Top() || y >= l.Bottom() {
		t.Errorf("y = %v, want inside (%v, %v)", y, l.Top(), l.Bottom())
	}
}

func TestLayoutFlatHugeValueCentered(t *testing.T) {
	spec := ChartSpec{Series: []Series{{Values: []float64{1e300, 1e300}}}}
	l := NewLayout(spec, DefaultOptions())
	mid := (l.Top() + l.Bottom()) / 2
	if y := l.Y(1e300); math.Abs(y-mid) > 1 {
		t.Errorf("y = %v, want %v", y, mid)
	}
}

func TestLayoutTitleEnlargesCanvas(t *testing.T) {
	spec := ChartSpec{Title: "T", Series: []Series{{Values: []float64{1, 2}}}}
	l := NewLayout(spec, DefaultOptions())
	if l.Canvas.Height != 220 || l.Canvas.PadTop != 30 {
		t.Errorf("canvas = %+v", l.Canvas)
	}
}

func TestFormatTick(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{2.5, "2.5"},
		{0.30000000000000004, "0.3"},
		{1234.5678, "1235"},
		{1e6, "1000000"},
		{-0.0001234, "-0.0001234"},
		{12.5, "12.5"},
	}
	for _, tt := range tests {
		if got := FormatTick(tt.in); got != tt.want {
			t.Errorf("FormatTick(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
