package regression

import (
	"time"

	"github.com/guttosm/assetbeta/internal/domain/models"
)

// Input is the response vector and explanatory matrix of one regression.
//
// X is row-major without the intercept column; X[i][j] is the value of
// Explanatory[j] at Dates[i]. len(Y) == len(X) == len(Dates).
type Input struct {
	Dependent   string
	Year        int
	Explanatory []string
	Dates       []time.Time
	Y           []float64
	X           [][]float64
}

// Rows returns the number of observations.
func (in *Input) Rows() int { return len(in.Y) }

// Split separates the dependent asset from the explanatory ones and keeps
// only rows where every selected column has a finite value.
//
// The explanatory set is every other column of slice, in column order,
// minus excluded. Naming the dependent asset in excluded removes it from the
// data entirely, which is reported as KindMissingColumn.
func Split(slice models.ReturnSeries, dependent string, excluded []string) (*Input, error) {
	year := sliceYear(slice)

	drop := make(map[string]struct{}, len(excluded))
	for _, a := range excluded {
		drop[a] = struct{}{}
	}
	if _, gone := drop[dependent]; gone || !slice.HasAsset(dependent) {
		return nil, &Error{Kind: KindMissingColumn, Asset: dependent, Year: year, Rows: slice.Len()}
	}

	explanatory := make([]string, 0, len(slice.Assets))
	for _, a := range slice.Assets {
		if a == dependent {
			continue
		}
		if _, skip := drop[a]; skip {
			continue
		}
		explanatory = append(explanatory, a)
	}

	in := &Input{Dependent: dependent, Year: year, Explanatory: explanatory}
	if len(explanatory) == 0 {
		return nil, &Error{Kind: KindInsufficientData, Asset: dependent, Year: year, Rows: slice.Len()}
	}

	for _, rec := range slice.Records {
		y, ok := rec.Value(dependent)
		if !ok {
			continue
		}
		row := make([]float64, len(explanatory))
		complete := true
		for j, a := range explanatory {
			v, ok := rec.Value(a)
			if !ok {
				complete = false
				break
			}
			row[j] = v
		}
		if !complete {
			continue
		}
		in.Dates = append(in.Dates, rec.Date)
		in.Y = append(in.Y, y)
		in.X = append(in.X, row)
	}

	if len(in.Y) == 0 {
		return nil, &Error{Kind: KindInsufficientData, Asset: dependent, Year: year, Columns: len(explanatory)}
	}
	return in, nil
}

func sliceYear(slice models.ReturnSeries) int {
	if slice.IsEmpty() {
		return 0
	}
	return slice.Records[0].Date.Year()
}
