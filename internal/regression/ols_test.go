package regression

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mathext"
)

func TestFitOLS_TextbookSimpleRegression(t *testing.T) {
	in := &Input{
		Dependent:   "Y",
		Year:        2020,
		Explanatory: []string{"X"},
		Y:           []float64{2, 4, 5, 4, 5},
		X:           [][]float64{{1}, {2}, {3}, {4}, {5}},
	}
	f, err := FitOLS(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	const tol = 1e-9
	checks := []struct {
		name      string
		got, want float64
	}{
		{"intercept", f.Intercept(), 2.2},
		{"slope", f.Params[1].Coef, 0.6},
		{"ssr", f.SSR, 2.4},
		{"tss", f.TSS, 6},
		{"r2", f.RSquared, 0.6},
		{"adj r2", f.AdjRSquared, 1 - 0.4*4.0/3.0},
		{"F", f.FStat, 4.5},
		{"se slope", f.Params[1].StdErr, math.Sqrt(0.08)},
		{"se intercept", f.Params[0].StdErr, math.Sqrt(0.88)},
		{"t slope", f.Params[1].T, 0.6 / math.Sqrt(0.08)},
		{"durbin-watson", f.DurbinWatson, 4.84 / 2.4},
		{"df resid", f.DFResid, 3},
		{"df model", f.DFModel, 1},
		{"llf", f.LogLikelihood, -2.5 * (math.Log(2*math.Pi) + math.Log(2.4/5) + 1)},
	}
	for _, c := range checks {
		if !approx(c.got, c.want, tol) {
			t.Fatalf("%s: got %.12f want %.12f", c.name, c.got, c.want)
		}
	}

	// With one regressor the F test and the slope t test coincide.
	if !approx(f.FPValue, f.Params[1].P, 1e-9) {
		t.Fatalf("F p-value %.12f != slope p-value %.12f", f.FPValue, f.Params[1].P)
	}
	if f.Params[1].P <= 0 || f.Params[1].P >= 1 {
		t.Fatalf("p-value out of range: %v", f.Params[1].P)
	}
	if !(f.Params[1].CILow < 0.6 && 0.6 < f.Params[1].CIHigh) {
		t.Fatalf("confidence interval does not contain estimate: [%v, %v]", f.Params[1].CILow, f.Params[1].CIHigh)
	}
	if !approx(f.Params[1].CIHigh-0.6, 0.6-f.Params[1].CILow, 1e-12) {
		t.Fatalf("confidence interval not symmetric")
	}
}

func TestFitOLS_ExactLinearRelationship(t *testing.T) {
	in := &Input{Dependent: "Y", Explanatory: []string{"A", "B"}}
	for i := 0; i < 10; i++ {
		a := float64(i%4) * 0.02
		b := float64(i*i%7) * 0.01
		in.X = append(in.X, []float64{a, b})
		in.Y = append(in.Y, 0.01+0.5*a-0.2*b)
	}
	f, err := FitOLS(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []float64{0.01, 0.5, -0.2}
	for i, w := range want {
		if !approx(f.Params[i].Coef, w, 1e-10) {
			t.Fatalf("param %d: got %v want %v", i, f.Params[i].Coef, w)
		}
	}
	if !approx(f.RSquared, 1, 1e-10) {
		t.Fatalf("R2=%v want 1", f.RSquared)
	}
}

func TestFitOLS_ReproducesResponseAndIsDeterministic(t *testing.T) {
	in, err := Split(goldSeries(2020), "Gold", nil)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	f1, err := FitOLS(in)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	for i, row := range in.X {
		if got := f1.Predict(row) + f1.Residuals[i]; !approx(got, in.Y[i], 1e-12) {
			t.Fatalf("row %d: intercept+b.x+e=%v, y=%v", i, got, in.Y[i])
		}
	}

	f2, err := FitOLS(in)
	if err != nil {
		t.Fatalf("refit: %v", err)
	}
	for i := range f1.Params {
		if math.Float64bits(f1.Params[i].Coef) != math.Float64bits(f2.Params[i].Coef) ||
			math.Float64bits(f1.Params[i].StdErr) != math.Float64bits(f2.Params[i].StdErr) {
			t.Fatalf("param %d differs between fits", i)
		}
	}
	if math.Float64bits(f1.RSquared) != math.Float64bits(f2.RSquared) || math.Float64bits(f1.FStat) != math.Float64bits(f2.FStat) {
		t.Fatalf("diagnostics differ between fits")
	}
}

func TestFitOLS_SmallPValuesKeepPrecision(t *testing.T) {
	in := &Input{Dependent: "Y", Year: 2021, Explanatory: []string{"A", "B"}}
	for i := 0; i < 30; i++ {
		a := math.Sin(float64(i))
		b := 0.5 * math.Cos(2*float64(i))
		in.X = append(in.X, []float64{a, b})
		in.Y = append(in.Y, 0.01+2*a-b+0.001*math.Sin(7*float64(i)))
	}
	f, err := FitOLS(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	relClose := func(got, want float64) bool {
		return math.Abs(got-want) <= 1e-9*math.Abs(want)
	}
	nu := f.DFResid
	for _, prm := range f.Params {
		want := mathext.RegIncBeta(nu/2, 0.5, nu/(nu+prm.T*prm.T))
		if want <= 0 || want >= 1e-16 {
			t.Fatalf("%s: reference p-value %g is not in the far tail", prm.Name, want)
		}
		if !relClose(prm.P, want) {
			t.Fatalf("%s: p=%g want %g", prm.Name, prm.P, want)
		}
	}

	d1, d2 := f.DFModel, f.DFResid
	want := mathext.RegIncBeta(d2/2, d1/2, d2/(d2+d1*f.FStat))
	if want <= 0 || want >= 1e-16 {
		t.Fatalf("reference F p-value %g is not in the far tail", want)
	}
	if !relClose(f.FPValue, want) {
		t.Fatalf("F p-value=%g want %g", f.FPValue, want)
	}
}

func TestFSurvival_Edges(t *testing.T) {
	if got := fSurvival(0, 2, 10); got != 1 {
		t.Fatalf("P(F>0)=%v want 1", got)
	}
	if got := fSurvival(math.Inf(1), 2, 10); got != 0 {
		t.Fatalf("P(F>inf)=%v want 0", got)
	}
	if got := fSurvival(math.NaN(), 2, 10); !math.IsNaN(got) {
		t.Fatalf("P(F>NaN)=%v want NaN", got)
	}
}

func TestFitOLS_IdenticalColumnsAreSingular(t *testing.T) {
	in := &Input{Dependent: "Y", Year: 2020, Explanatory: []string{"A", "A copy"}}
	for i := 0; i < 8; i++ {
		a := math.Sin(float64(i))
		in.X = append(in.X, []float64{a, a})
		in.Y = append(in.Y, 0.3*a+0.01*float64(i))
	}
	f, err := FitOLS(in)
	if !errors.Is(err, ErrSingularMatrix) || f != nil {
		t.Fatalf("want singular matrix, got f=%v err=%v", f, err)
	}
	var re *Error
	if !errors.As(err, &re) || re.Rows != 8 || re.Columns != 3 {
		t.Fatalf("unexpected error context: %+v", re)
	}
}

func TestFitOLS_ConstantColumnIsSingular(t *testing.T) {
	in := &Input{Dependent: "Y", Explanatory: []string{"A", "Flat"}}
	for i := 0; i < 6; i++ {
		in.X = append(in.X, []float64{float64(i), 0.05})
		in.Y = append(in.Y, float64(i*i))
	}
	if _, err := FitOLS(in); !errors.Is(err, ErrSingularMatrix) {
		t.Fatalf("want singular matrix, got %v", err)
	}
}

func TestFitOLS_InsufficientData(t *testing.T) {
	cases := []struct {
		name string
		in   *Input
	}{
		{name: "nil input", in: nil},
		{name: "no rows", in: &Input{Explanatory: []string{"A"}}},
		{name: "no columns", in: &Input{Y: []float64{1, 2}, X: [][]float64{{}, {}}}},
		{name: "one row two columns", in: &Input{Dependent: "Gold", Explanatory: []string{"Bitcoin", "S&P 500"}, Y: []float64{0.01}, X: [][]float64{{0.1, 0.02}}}},
		{name: "two rows two columns", in: &Input{Dependent: "Gold", Explanatory: []string{"Bitcoin", "S&P 500"}, Y: []float64{0.01, 0.02}, X: [][]float64{{0.1, 0.02}, {0.3, 0.01}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := FitOLS(tc.in)
			if !errors.Is(err, ErrInsufficientData) || f != nil {
				t.Fatalf("want insufficient data, got f=%v err=%v", f, err)
			}
		})
	}
}

func TestFitOLS_ExactlyIdentifiedHasUndefinedInference(t *testing.T) {
	in := &Input{
		Dependent:   "Gold",
		Explanatory: []string{"Bitcoin", "S&P 500"},
		Y:           []float64{0.01, 0.02, -0.03},
		X:           [][]float64{{0.1, 0.02}, {0.3, 0.01}, {-0.2, 0.05}},
	}
	f, err := FitOLS(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.DFResid != 0 {
		t.Fatalf("df resid=%v", f.DFResid)
	}
	for i, row := range in.X {
		if !approx(f.Predict(row), in.Y[i], 1e-12) {
			t.Fatalf("row %d not interpolated", i)
		}
	}
	if !math.IsNaN(f.Params[1].StdErr) || !math.IsNaN(f.FStat) || !math.IsNaN(f.AdjRSquared) {
		t.Fatalf("expected NaN inference statistics: %+v", f.Params[1])
	}
	if !strings.Contains(f.Summary(), "zero residual degrees of freedom") {
		t.Fatalf("summary should flag undefined inference")
	}
}

func TestFit_CoefficientsExcludeInterceptAndKeepOrder(t *testing.T) {
	f := &Fit{Params: []Param{{Name: InterceptName, Coef: 9}, {Name: "S&P 500", Coef: 1}, {Name: "Bitcoin", Coef: 2}}}
	got := f.Coefficients()
	if len(got) != 2 || got[0] != (Coefficient{Asset: "S&P 500", Value: 1}) || got[1] != (Coefficient{Asset: "Bitcoin", Value: 2}) {
		t.Fatalf("coefficients=%+v", got)
	}
}
