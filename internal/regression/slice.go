package regression

import (
	"sort"

	"github.com/guttosm/assetbeta/internal/domain/models"
)

// SelectYear returns the records of series whose calendar year equals year,
// in their original order. The column list is carried over unchanged.
// An empty result is not an error here; Run reports it as KindEmptySlice.
func SelectYear(series models.ReturnSeries, year int) models.ReturnSeries {
	out := models.ReturnSeries{Assets: append([]string(nil), series.Assets...)}
	for _, rec := range series.Records {
		if rec.Date.Year() == year {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// Years lists the distinct calendar years present in series, ascending.
func Years(series models.ReturnSeries) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, rec := range series.Records {
		y := rec.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
