package indicator

import (
	"errors"
	"math"
	"testing"
)

func TestRSIWarmupLength(t *testing.T) {
	closes := []float64{10, 11, 10, 12, 13, 12, 14, 15}
	period := 3
	out := RSI(closes, period)

	if len(out) != len(closes) {
		t.Fatalf("expected %d values, got %d", len(closes), len(out))
	}
	for i := 0; i < period; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("RSI[%d] = %f, want NaN during warm-up", i, out[i])
		}
	}
	for i := period; i < len(out); i++ {
		if math.IsNaN(out[i]) {
			t.Errorf("RSI[%d] is NaN after warm-up", i)
		}
		if out[i] < 0 || out[i] > 100 {
			t.Errorf("RSI[%d] = %f outside [0,100]", i, out[i])
		}
	}
}

func TestRSIWilderSmoothing(t *testing.T) {
	// period 2 over [10, 11, 10, 12]:
	// seed gains/losses over the first two diffs (+1, -1) give RSI 50;
	// the +2 diff then smooths to avgGain 1.25, avgLoss 0.25.
	closes := []float64{10, 11, 10, 12}
	out := RSI(closes, 2)

	if got := out[2]; math.Abs(got-50) > 1e-9 {
		t.Errorf("seeded RSI = %f, want 50", got)
	}
	want := 100.0 - 100.0/(1.0+5.0)
	if got := out[3]; math.Abs(got-want) > 1e-9 {
		t.Errorf("smoothed RSI = %f, want %f", got, want)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	out := RSI(closes, 2)
	for i := 2; i < len(out); i++ {
		if out[i] != 100 {
			t.Errorf("RSI[%d] = %f, want 100 for a pure uptrend", i, out[i])
		}
	}
}

func TestWMAWeights(t *testing.T) {
	closes := []float64{1, 2, 3, 4}
	out := WMA(closes, 3)

	for i := 0; i < 2; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("WMA[%d] = %f, want NaN during warm-up", i, out[i])
		}
	}
	// weights 1,2,3 with denominator 6
	if want := (1*1 + 2*2 + 3*3) / 6.0; math.Abs(out[2]-want) > 1e-12 {
		t.Errorf("WMA[2] = %f, want %f", out[2], want)
	}
	if want := (2*1 + 3*2 + 4*3) / 6.0; math.Abs(out[3]-want) > 1e-12 {
		t.Errorf("WMA[3] = %f, want %f", out[3], want)
	}
}

func TestRollingStdDevSample(t *testing.T) {
	closes := []float64{1, 2, 3}
	out := RollingStdDev(closes, 3)

	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected NaN warm-up, got %v", out[:2])
	}
	// sample (ddof=1) stddev of {1,2,3} is exactly 1
	if math.Abs(out[2]-1) > 1e-12 {
		t.Errorf("stddev = %f, want 1", out[2])
	}
}

func TestComputeWarmupAlignment(t *testing.T) {
	closes := []float64{10, 11, 10, 12, 13, 12, 14, 15, 14, 16}
	p := Params{RSIPeriod: 4, BandPeriod: 5, BandWidth: 2}

	set, err := Compute(closes, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	for i := 0; i < p.RSIPeriod; i++ {
		if !math.IsNaN(set.RSI[i]) {
			t.Errorf("RSI[%d] defined during warm-up", i)
		}
	}
	for i := 0; i < p.BandPeriod-1; i++ {
		if !math.IsNaN(set.Upper[i]) || !math.IsNaN(set.Lower[i]) {
			t.Errorf("bands defined at %d during warm-up", i)
		}
	}
	if set.DefinedAt(p.RSIPeriod - 1) {
		t.Error("DefinedAt true inside warm-up window")
	}
	if !set.DefinedAt(len(closes) - 1) {
		t.Error("DefinedAt false after warm-up")
	}
	for i := range closes {
		if math.IsNaN(set.Upper[i]) {
			continue
		}
		if set.Upper[i] < set.Middle[i] || set.Lower[i] > set.Middle[i] {
			t.Errorf("band ordering violated at %d: lower=%f middle=%f upper=%f",
				i, set.Lower[i], set.Middle[i], set.Upper[i])
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	closes := []float64{10, 11.5, 10.25, 12, 13.75, 12.5, 14, 15.125, 14.5, 16}
	p := Params{RSIPeriod: 3, BandPeriod: 4, BandWidth: 2}

	a, err := Compute(closes, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	b, err := Compute(closes, p)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	for i := range closes {
		if math.Float64bits(a.RSI[i]) != math.Float64bits(b.RSI[i]) {
			t.Errorf("RSI[%d] not bit-identical across runs", i)
		}
		if math.Float64bits(a.Upper[i]) != math.Float64bits(b.Upper[i]) {
			t.Errorf("Upper[%d] not bit-identical across runs", i)
		}
	}
}

func TestComputeInsufficientData(t *testing.T) {
	closes := []float64{10, 11, 12}
	_, err := Compute(closes, Params{RSIPeriod: 14, BandPeriod: 20, BandWidth: 2})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       Params
		wantErr bool
	}{
		{"valid", Params{RSIPeriod: 14, BandPeriod: 20, BandWidth: 2}, false},
		{"zero rsi period", Params{RSIPeriod: 0, BandPeriod: 20, BandWidth: 2}, true},
		{"band period too small", Params{RSIPeriod: 14, BandPeriod: 1, BandWidth: 2}, true},
		{"zero band width", Params{RSIPeriod: 14, BandPeriod: 20, BandWidth: 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMinCandles(t *testing.T) {
	p := Params{RSIPeriod: 14, BandPeriod: 20, BandWidth: 2}
	if got := p.MinCandles(); got != 20 {
		t.Errorf("MinCandles = %d, want 20", got)
	}
	p = Params{RSIPeriod: 25, BandPeriod: 20, BandWidth: 2}
	if got := p.MinCandles(); got != 26 {
		t.Errorf("MinCandles = %d, want 26", got)
	}
}
