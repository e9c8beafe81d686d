package regression

import (
	"errors"
	"fmt"
)

// Kind classifies a regression failure so callers can react to it
// (re-prompt for another year, another asset, and so on).
type Kind int

const (
	// KindUnknown is reported by KindOf for errors that did not come from this package.
	KindUnknown Kind = iota
	// KindMissingColumn: the dependent asset is not a column of the slice.
	KindMissingColumn
	// KindEmptySlice: no records for the requested year.
	KindEmptySlice
	// KindInsufficientData: nothing usable after the completeness filter,
	// or fewer usable rows than parameters.
	KindInsufficientData
	// KindSingularMatrix: the design matrix is not of full column rank.
	KindSingularMatrix
)

// Sentinel errors matched by errors.Is against any *Error of the same Kind.
var (
	ErrMissingColumn    = errors.New("missing column")
	ErrEmptySlice       = errors.New("empty slice")
	ErrInsufficientData = errors.New("insufficient data")
	ErrSingularMatrix   = errors.New("singular matrix")
)

// String returns the snake_case name used in logs, metrics and API payloads.
func (k Kind) String() string {
	switch k {
	case KindMissingColumn:
		return "missing_column"
	case KindEmptySlice:
		return "empty_slice"
	case KindInsufficientData:
		return "insufficient_data"
	case KindSingularMatrix:
		return "singular_matrix"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMissingColumn:
		return ErrMissingColumn
	case KindEmptySlice:
		return ErrEmptySlice
	case KindInsufficientData:
		return ErrInsufficientData
	case KindSingularMatrix:
		return ErrSingularMatrix
	default:
		return nil
	}
}

// Error is the single error type returned by the regression pipeline.
//
// Fields carry enough context to render a specific message:
//   - Asset: the dependent asset of the request.
//   - Year: the requested year (0 when unknown).
//   - Rows: usable rows at the point of failure.
//   - Columns: parameters (or explanatory columns) involved.
//   - Err: optional underlying cause (e.g., a provider or solver error).
type Error struct {
	Kind    Kind
	Asset   string
	Year    int
	Rows    int
	Columns int
	Err     error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindMissingColumn:
		msg = fmt.Sprintf("%s: asset %q is not available for year %d", ErrMissingColumn, e.Asset, e.Year)
	case KindEmptySlice:
		msg = fmt.Sprintf("%s: no rows for year %d", ErrEmptySlice, e.Year)
	case KindInsufficientData:
		msg = fmt.Sprintf("%s: %d usable rows for %d columns (asset %q, year %d)", ErrInsufficientData, e.Rows, e.Columns, e.Asset, e.Year)
	case KindSingularMatrix:
		msg = fmt.Sprintf("%s: design matrix is rank deficient (rows=%d, columns=%d, asset %q, year %d)", ErrSingularMatrix, e.Rows, e.Columns, e.Asset, e.Year)
	default:
		msg = "regression failed"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrEmptySlice) and friends work.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown if err is not a regression error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}
