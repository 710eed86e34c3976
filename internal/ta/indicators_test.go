package ta

import (
	"math"
	"testing"
)

func TestEMASeriesEmptyInput(t *testing.T) {
	t.Parallel()
	if got := EMASeries(nil, 12); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestEMASeriesSeedIsFirstValue(t *testing.T) {
	t.Parallel()
	values := []float64{3.5, 1.0, 2.0}
	out := EMASeries(values, 12)
	if out[0] != values[0] {
		t.Fatalf("expected seed %v, got %v", values[0], out[0])
	}
}

func TestEMASeriesRecurrence(t *testing.T) {
	t.Parallel()
	values := []float64{1.0, 2.0, 3.0, 4.0, 5.0, 4.0, 3.0, 2.0, 1.0, 0.5}
	period := 12
	out := EMASeries(values, period)
	if len(out) != len(values) {
		t.Fatalf("expected %d outputs, got %d", len(values), len(out))
	}
	alpha := 2.0 / float64(period+1)
	for i := 1; i < len(values); i++ {
		want := alpha*values[i] + (1-alpha)*out[i-1]
		if math.Abs(out[i]-want) > 1e-12 {
			t.Fatalf("recurrence violated at %d: got %v want %v", i, out[i], want)
		}
	}
}

func TestEMASeriesPeriodOneIsIdentity(t *testing.T) {
	t.Parallel()
	values := []float64{1.0, -2.0, 3.0}
	out := EMASeries(values, 1)
	for i := range values {
		if out[i] != values[i] {
			t.Fatalf("expected identity at %d: got %v want %v", i, out[i], values[i])
		}
	}
	out[0] = 99
	if values[0] == 99 {
		t.Fatal("output must not alias the input slice")
	}
}

func TestRollingSumShrinkingHeadWindow(t *testing.T) {
	t.Parallel()
	values := []int64{100, 200, -50, 300, 150, -200, 100}
	want := []int64{100, 300, 250, 550, 700, 400, 300}
	got := RollingSum(values, 5)
	if len(got) != len(want) {
		t.Fatalf("expected %d outputs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestRollingSumEmptyInput(t *testing.T) {
	t.Parallel()
	if got := RollingSum(nil, 5); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestRollingSumWindowOne(t *testing.T) {
	t.Parallel()
	values := []int64{5, -3, 7}
	got := RollingSum(values, 1)
	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("index %d: got %d want %d", i, got[i], values[i])
		}
	}
}
