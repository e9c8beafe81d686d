package dto

import (
	"errors"
	"time"

	"github.com/guttosm/assetbeta/internal/regression"
)

// ErrorResponse is the JSON body of every failed request.
//
// Kind and the fields after it are only set for regression failures, so a
// client can tell "pick another year" (empty_slice) from "pick other assets"
// (singular_matrix, insufficient_data, missing_column).
type ErrorResponse struct {
	Message      string    `json:"message" example:"Regression failed"`
	ErrorDetails string    `json:"error,omitempty" example:"empty slice: no rows for year 2031"`
	Timestamp    time.Time `json:"timestamp"`
	Kind         string    `json:"kind,omitempty" example:"empty_slice"`
	Asset        string    `json:"asset,omitempty" example:"Gold"`
	Year         int       `json:"year,omitempty" example:"2031"`
	Rows         int       `json:"rows,omitempty"`
	Columns      int       `json:"columns,omitempty"`
}

func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
// When err is a regression error its context is copied into the response.
func NewErrorResponse(message string, err error) ErrorResponse {
	out := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err == nil {
		return out
	}
	out.ErrorDetails = err.Error()

	var re *regression.Error
	if errors.As(err, &re) {
		out.Kind = re.Kind.String()
		out.Asset = re.Asset
		out.Year = re.Year
		out.Rows = re.Rows
		out.Columns = re.Columns
	}
	return out
}
