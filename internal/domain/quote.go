package domain

// Quote is the latest trade snapshot for a ticker.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent string  `json:"changePercent"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        string  `json:"volume"`
	PreviousClose float64 `json:"previousClose"`
	Source        string  `json:"source"`
}

// CompanyMetrics holds valuation and trading statistics. Nil means the
// provider did not report the field.
type CompanyMetrics struct {
	MarketCap          *float64 `json:"marketCap"`
	MarketCapFormatted string   `json:"marketCapFormatted"`
	PERatio            *float64 `json:"peRatio"`
	EPS                *float64 `json:"eps"`
	Beta               *float64 `json:"beta"`
	FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow"`
	AvgVolume          *float64 `json:"avgVolume"`
	SharesOutstanding  *float64 `json:"sharesOutstanding"`
	DividendYield      *float64 `json:"dividendYield"`
	Source             string   `json:"source"`
}

// CompanyProfile is the static part of the company card.
type CompanyProfile struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Exchange     string `json:"exchange"`
	Sector       string `json:"sector"`
	Industry     string `json:"industry"`
	Employees    int    `json:"employees"`
	Headquarters string `json:"headquarters"`
	CEO          string `json:"ceo"`
	Founded      string `json:"founded"`
	Website      string `json:"website"`
	Description  string `json:"description"`
}

// CompanyInfo is the profile merged with live metrics.
type CompanyInfo struct {
	CompanyProfile
	MarketCap          *float64 `json:"marketCap"`
	MarketCapFormatted string   `json:"marketCapFormatted"`
	PERatio            *float64 `json:"peRatio"`
	EPS                *float64 `json:"eps"`
	DividendYield      *float64 `json:"dividendYield"`
	FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow"`
	AvgVolume          *float64 `json:"avgVolume"`
	Beta               *float64 `json:"beta"`
	SharesOutstanding  *float64 `json:"sharesOutstanding"`
	FloatShares        *float64 `json:"floatShares"`
	DataSource         string   `json:"dataSource"`
}

// GameStopProfile is the profile served for the default ticker.
var GameStopProfile = CompanyProfile{
	Name:         "GameStop Corp.",
	Symbol:       "GME",
	Exchange:     "NYSE",
	Sector:       "Consumer Cyclical",
	Industry:     "Specialty Retail",
	Employees:    8000,
	Headquarters: "Grapevine, Texas",
	CEO:          "Ryan Cohen",
	Founded:      "1984",
	Website:      "https://www.gamestop.com",
	Description:  "GameStop Corp. is a leading specialty retailer offering video games, consumer electronics, and gaming merchandise through its e-commerce properties and thousands of stores.",
}

// ShortInterest is one short-interest observation.
type ShortInterest struct {
	Date          string   `json:"date"`
	ShortInterest float64  `json:"shortInterest"`
	DaysToCover   float64  `json:"daysToCover"`
	SharesShort   *float64 `json:"sharesShort,omitempty"`
	Source        string   `json:"source"`
}

// OptionsFlow is an aggregate of one options data source. Sources report
// different subsets, so every metric is optional.
type OptionsFlow struct {
	Date             string   `json:"date"`
	CallVolume       *float64 `json:"callVolume,omitempty"`
	PutVolume        *float64 `json:"putVolume,omitempty"`
	CallOpenInterest *float64 `json:"callOpenInterest,omitempty"`
	PutOpenInterest  *float64 `json:"putOpenInterest,omitempty"`
	PutCallRatio     *float64 `json:"putCallRatio,omitempty"`
	TotalVolume      *float64 `json:"totalVolume,omitempty"`
	Source           string   `json:"source"`
}
