package regression

import (
	"math"
	"time"

	"github.com/guttosm/assetbeta/internal/domain/models"
)

func month(year, m int) time.Time {
	return time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

// goldSeries builds twelve complete months of Bitcoin / S&P 500 / Gold returns for year.
func goldSeries(year int) models.ReturnSeries {
	s := models.ReturnSeries{Assets: []string{"Bitcoin", "S&P 500", "Gold"}}
	for i := 0; i < 12; i++ {
		fi := float64(i)
		btc := 0.1 * math.Sin(fi+1)
		spy := 0.03 * math.Cos(2*fi+0.5)
		gold := 0.01 + 0.05*btc - 0.3*spy + 0.005*math.Sin(3*fi+1.7)
		s.Records = append(s.Records, models.ReturnRecord{
			Date:   month(year, i+1),
			Values: map[string]float64{"Bitcoin": btc, "S&P 500": spy, "Gold": gold},
		})
	}
	return s
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
