package regression

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const summaryWidth = 78

// Summary renders the fit as a fixed-width text report: a header with the
// model statistics, a parameter table (const first) and a residual footer.
func (f *Fit) Summary() string {
	var b strings.Builder
	rule := strings.Repeat("=", summaryWidth)

	title := "OLS Regression Results"
	pad := (summaryWidth - len(title)) / 2
	b.WriteString(strings.Repeat(" ", pad) + title + "\n")
	b.WriteString(rule + "\n")

	left := [][2]string{
		{"Dep. Variable:", f.Dependent},
		{"Year:", strconv.Itoa(f.Year)},
		{"No. Observations:", strconv.Itoa(f.NObs)},
		{"Df Residuals:", num(f.DFResid, 0)},
		{"Df Model:", num(f.DFModel, 0)},
		{"Covariance Type:", "nonrobust"},
		{"", ""},
	}
	right := [][2]string{
		{"R-squared:", num(f.RSquared, 3)},
		{"Adj. R-squared:", num(f.AdjRSquared, 3)},
		{"F-statistic:", num(f.FStat, 3)},
		{"Prob (F-statistic):", num(f.FPValue, 4)},
		{"Log-Likelihood:", num(f.LogLikelihood, 3)},
		{"AIC:", num(f.AIC, 2)},
		{"BIC:", num(f.BIC, 2)},
	}
	for i := range left {
		fmt.Fprintf(&b, "%-20s%18s   %-20s%17s\n", left[i][0], left[i][1], right[i][0], right[i][1])
	}
	b.WriteString(rule + "\n")

	nameWidth := len(InterceptName)
	for _, p := range f.Params {
		if len(p.Name) > nameWidth {
			nameWidth = len(p.Name)
		}
	}
	nameWidth += 2

	fmt.Fprintf(&b, "%-*s%10s%11s%11s%11s%12s%12s\n", nameWidth, "", "coef", "std err", "t", "P>|t|", "[0.025", "0.975]")
	b.WriteString(strings.Repeat("-", summaryWidth) + "\n")
	for _, p := range f.Params {
		fmt.Fprintf(&b, "%-*s%10s%11s%11s%11s%12s%12s\n", nameWidth, p.Name,
			num(p.Coef, 4), num(p.StdErr, 3), num(p.T, 3), num(p.P, 3), num(p.CILow, 3), num(p.CIHigh, 3))
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-20s%18s\n", "Durbin-Watson:", num(f.DurbinWatson, 3))
	b.WriteString(rule + "\n")

	if f.DFResid == 0 {
		b.WriteString("Note: zero residual degrees of freedom; inference statistics are undefined.\n")
	}
	return b.String()
}

func num(v float64, prec int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
