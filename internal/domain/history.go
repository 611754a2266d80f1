package domain

import (
	"sort"
	"time"
)

// HistoricalPoint is one daily OHLCV candle. Date is YYYY-MM-DD in UTC.
type HistoricalPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// DateLayout is the wire format of HistoricalPoint.Date.
const DateLayout = "2006-01-02"

// Period is a chart window selectable by the client.
type Period string

const (
	Period1W Period = "1W"
	Period1M Period = "1M"
	Period3M Period = "3M"
	Period6M Period = "6M"
	Period1Y Period = "1Y"
	Period5Y Period = "5Y"
)

// SupportedPeriods lists every accepted period.
var SupportedPeriods = []Period{Period1W, Period1M, Period3M, Period6M, Period1Y, Period5Y}

var periodLengths = map[Period]time.Duration{
	Period1W: 7 * 24 * time.Hour,
	Period1M: 30 * 24 * time.Hour,
	Period3M: 90 * 24 * time.Hour,
	Period6M: 180 * 24 * time.Hour,
	Period1Y: 365 * 24 * time.Hour,
	Period5Y: 5 * 365 * 24 * time.Hour,
}

var yahooRanges = map[Period]string{
	Period1W: "5d",
	Period1M: "1mo",
	Period3M: "3mo",
	Period6M: "6mo",
	Period1Y: "1y",
	Period5Y: "5y",
}

// ParsePeriod maps unknown or empty values to 1Y.
func ParsePeriod(v string) Period {
	p := Period(v)
	if _, ok := periodLengths[p]; ok {
		return p
	}
	return Period1Y
}

// Length is the wall-clock span covered by the period.
func (p Period) Length() time.Duration {
	if d, ok := periodLengths[p]; ok {
		return d
	}
	return periodLengths[Period1Y]
}

// YahooRange is the chart API range parameter for the period.
func (p Period) YahooRange() string {
	if r, ok := yahooRanges[p]; ok {
		return r
	}
	return "1y"
}

// SortPointsAscending orders points by date, oldest first.
func SortPointsAscending(points []HistoricalPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
}
