package provider

import (
	"time"

	"gmedash/internal/domain"
)

// buildPoints zips parallel OHLCV arrays into daily points. Missing values
// read as zero and points without a positive close are dropped.
func buildPoints(times []int64, open, high, low, closes, volume []*float64) []domain.HistoricalPoint {
	points := make([]domain.HistoricalPoint, 0, len(times))
	for i, ts := range times {
		c := elem(closes, i)
		if c <= 0 {
			continue
		}
		points = append(points, domain.HistoricalPoint{
			Date:   time.Unix(ts, 0).UTC().Format(domain.DateLayout),
			Open:   elem(open, i),
			High:   elem(high, i),
			Low:    elem(low, i),
			Close:  c,
			Volume: elem(volume, i),
		})
	}
	domain.SortPointsAscending(points)
	return points
}
