package models

import (
	"math"
	"time"
)

// Asset identifies one selectable instrument.
//
// Fields:
//   - Name: display name and column identifier (e.g., "Gold").
//   - Ticker: symbol used by remote market-data sources (e.g., "GLD").
type Asset struct {
	Name   string `json:"name" example:"Gold"`
	Ticker string `json:"ticker" example:"GLD"`
}

// ReturnRecord is one month of periodic returns.
//
// Values holds one entry per asset that has data for the month.
// An asset without data for the month is simply absent from the map.
type ReturnRecord struct {
	Date   time.Time
	Values map[string]float64
}

// Value returns the return for asset, reporting false when it is absent or not finite.
func (r ReturnRecord) Value(asset string) (float64, bool) {
	v, ok := r.Values[asset]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ReturnSeries is a time-ordered table of monthly returns.
//
// Assets lists the columns in a stable order; every key used in
// Records[i].Values is expected to appear in Assets.
type ReturnSeries struct {
	Assets  []string
	Records []ReturnRecord
}

// Len returns the number of records.
func (s ReturnSeries) Len() int { return len(s.Records) }

// IsEmpty reports whether the series has no records.
func (s ReturnSeries) IsEmpty() bool { return len(s.Records) == 0 }

// HasAsset reports whether name is one of the series columns.
func (s ReturnSeries) HasAsset(name string) bool {
	for _, a := range s.Assets {
		if a == name {
			return true
		}
	}
	return false
}

// ReturnObservation is the long (one value per row) form of a ReturnSeries cell,
// used when loading returns into the database.
type ReturnObservation struct {
	Period time.Time
	Asset  string
	Value  float64
	Source string
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
