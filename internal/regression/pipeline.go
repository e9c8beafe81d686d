package regression

import "github.com/guttosm/assetbeta/internal/domain/models"

// Request selects one regression out of a ReturnSeries.
type Request struct {
	Year      int
	Dependent string
	Excluded  []string
}

// Result bundles the fitted model with its slope coefficients.
type Result struct {
	Fit          *Fit
	Coefficients []Coefficient
}

// Run executes the full pipeline: year slice, variable split, OLS fit and
// coefficient extraction. It performs no I/O and keeps no state between calls.
func Run(series models.ReturnSeries, req Request) (*Result, error) {
	if series.IsEmpty() {
		return nil, &Error{Kind: KindInsufficientData, Asset: req.Dependent, Year: req.Year}
	}

	slice := SelectYear(series, req.Year)
	if slice.IsEmpty() {
		return nil, &Error{Kind: KindEmptySlice, Asset: req.Dependent, Year: req.Year}
	}

	in, err := Split(slice, req.Dependent, req.Excluded)
	if err != nil {
		return nil, err
	}

	fit, err := FitOLS(in)
	if err != nil {
		return nil, err
	}

	return &Result{Fit: fit, Coefficients: fit.Coefficients()}, nil
}
