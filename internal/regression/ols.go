package regression

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// InterceptName labels the constant term in Params and in the summary table.
const InterceptName = "const"

// confidence is the two-sided coverage of Param.CILow/CIHigh.
const confidence = 0.95

// rankTol is the relative threshold below which a diagonal entry of R marks
// the design matrix as rank deficient.
const rankTol = 1e-10

// Param is one estimated parameter with its inference statistics.
// Statistics that need residual degrees of freedom are NaN when DFResid is zero.
type Param struct {
	Name   string
	Coef   float64
	StdErr float64
	T      float64
	P      float64
	CILow  float64
	CIHigh float64
}

// Coefficient is one slope of the fitted model, keyed by explanatory asset.
type Coefficient struct {
	Asset string  `json:"asset" example:"Bitcoin"`
	Value float64 `json:"value" example:"0.42"`
}

// Fit is the result of an OLS regression with intercept.
//
// Params[0] is the intercept; Params[1:] follow Explanatory order.
// A Fit is never modified after FitOLS returns it.
type Fit struct {
	Dependent   string
	Year        int
	Explanatory []string
	Params      []Param

	NObs    int
	DFModel float64
	DFResid float64

	RSquared    float64
	AdjRSquared float64
	FStat       float64
	FPValue     float64

	SSR           float64
	TSS           float64
	LogLikelihood float64
	AIC           float64
	BIC           float64
	DurbinWatson  float64

	Residuals []float64
	Fitted    []float64
}

// Intercept returns the constant term.
func (f *Fit) Intercept() float64 { return f.Params[0].Coef }

// Coefficients returns the slopes in explanatory-column order, intercept excluded.
func (f *Fit) Coefficients() []Coefficient {
	out := make([]Coefficient, 0, len(f.Params)-1)
	for _, p := range f.Params[1:] {
		out = append(out, Coefficient{Asset: p.Name, Value: p.Coef})
	}
	return out
}

// Predict evaluates intercept + coefficients·row for one explanatory row.
func (f *Fit) Predict(row []float64) float64 {
	v := f.Params[0].Coef
	for j, x := range row {
		v += f.Params[j+1].Coef * x
	}
	return v
}

// FitOLS estimates y = b0 + X·b by least squares using a Householder QR
// factorisation of the design matrix [1 X].
//
// It fails with KindInsufficientData when there are fewer rows than
// parameters, and with KindSingularMatrix when [1 X] is not of full column rank.
func FitOLS(in *Input) (*Fit, error) {
	if in == nil || len(in.Y) == 0 || len(in.Explanatory) == 0 {
		e := &Error{Kind: KindInsufficientData}
		if in != nil {
			e.Asset, e.Year, e.Rows, e.Columns = in.Dependent, in.Year, len(in.Y), len(in.Explanatory)+1
		}
		return nil, e
	}

	n := len(in.Y)
	k := len(in.Explanatory)
	p := k + 1
	if n < p {
		return nil, &Error{Kind: KindInsufficientData, Asset: in.Dependent, Year: in.Year, Rows: n, Columns: p}
	}
	singular := func(cause error) error {
		return &Error{Kind: KindSingularMatrix, Asset: in.Dependent, Year: in.Year, Rows: n, Columns: p, Err: cause}
	}

	x := mat.NewDense(n, p, nil)
	for i, row := range in.X {
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
	}
	y := mat.NewVecDense(n, append([]float64(nil), in.Y...))

	var qr mat.QR
	qr.Factorize(x)

	var r mat.Dense
	qr.RTo(&r)
	if rankDeficient(&r, p) {
		return nil, singular(nil)
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, singular(err)
	}

	// (XᵀX)⁻¹ = R⁻¹R⁻ᵀ, from the leading p×p block of R.
	rp := mat.NewTriDense(p, mat.Upper, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			rp.SetTri(i, j, r.At(i, j))
		}
	}
	var rinv mat.TriDense
	if err := rinv.InverseTri(rp); err != nil {
		return nil, singular(err)
	}
	var xtxInv mat.SymDense
	xtxInv.SymOuterK(1, &rinv)

	var fittedVec mat.VecDense
	fittedVec.MulVec(x, &beta)

	fitted := make([]float64, n)
	resid := make([]float64, n)
	for i := 0; i < n; i++ {
		fitted[i] = fittedVec.AtVec(i)
		resid[i] = in.Y[i] - fitted[i]
	}

	f := &Fit{
		Dependent:   in.Dependent,
		Year:        in.Year,
		Explanatory: append([]string(nil), in.Explanatory...),
		NObs:        n,
		DFModel:     float64(k),
		DFResid:     float64(n - p),
		Residuals:   resid,
		Fitted:      fitted,
	}

	f.SSR = floats.Dot(resid, resid)
	mean := stat.Mean(in.Y, nil)
	for _, v := range in.Y {
		f.TSS += (v - mean) * (v - mean)
	}

	f.RSquared = math.NaN()
	if f.TSS > 0 {
		f.RSquared = 1 - f.SSR/f.TSS
	}

	nf := float64(n)
	f.LogLikelihood = -nf / 2 * (math.Log(2*math.Pi) + math.Log(f.SSR/nf) + 1)
	f.AIC = -2*f.LogLikelihood + 2*float64(p)
	f.BIC = -2*f.LogLikelihood + float64(p)*math.Log(nf)

	f.DurbinWatson = math.NaN()
	if f.SSR > 0 {
		var num float64
		for i := 1; i < n; i++ {
			d := resid[i] - resid[i-1]
			num += d * d
		}
		f.DurbinWatson = num / f.SSR
	}

	names := append([]string{InterceptName}, in.Explanatory...)
	f.Params = make([]Param, p)
	for i := range f.Params {
		f.Params[i] = Param{
			Name:   names[i],
			Coef:   beta.AtVec(i),
			StdErr: math.NaN(),
			T:      math.NaN(),
			P:      math.NaN(),
			CILow:  math.NaN(),
			CIHigh: math.NaN(),
		}
	}

	f.AdjRSquared = math.NaN()
	f.FStat = math.NaN()
	f.FPValue = math.NaN()
	if f.DFResid == 0 {
		return f, nil
	}

	f.AdjRSquared = 1 - (1-f.RSquared)*(nf-1)/f.DFResid
	if f.TSS > 0 {
		f.FStat = ((f.TSS - f.SSR) / f.DFModel) / (f.SSR / f.DFResid)
		f.FPValue = fSurvival(f.FStat, f.DFModel, f.DFResid)
	}

	sigma2 := f.SSR / f.DFResid
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: f.DFResid}
	q := tdist.Quantile(1 - (1-confidence)/2)
	for i := range f.Params {
		se := math.Sqrt(sigma2 * xtxInv.At(i, i))
		prm := &f.Params[i]
		prm.StdErr = se
		prm.T = prm.Coef / se
		if !math.IsNaN(prm.T) {
			prm.P = 2 * tdist.Survival(math.Abs(prm.T))
		}
		prm.CILow = prm.Coef - q*se
		prm.CIHigh = prm.Coef + q*se
	}

	return f, nil
}

// fSurvival is P(F > x) for an F(d1, d2) variable, evaluated on the upper
// tail directly; 1-CDF underflows to zero for strongly significant fits.
func fSurvival(x, d1, d2 float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 1
	}
	return mathext.RegIncBeta(d2/2, d1/2, d2/(d2+d1*x))
}

// rankDeficient inspects the diagonal of R; without pivoting a zero (or
// numerically negligible) diagonal entry means a column is a linear
// combination of the columns before it.
func rankDeficient(r *mat.Dense, p int) bool {
	var maxDiag float64
	for i := 0; i < p; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}
	if maxDiag == 0 || math.IsNaN(maxDiag) {
		return true
	}
	for i := 0; i < p; i++ {
		if math.Abs(r.At(i, i)) <= rankTol*maxDiag {
			return true
		}
	}
	return false
}
