package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company is a filer identified by its CIK. SearchKey is derived from Name on
// every write and is never accepted from callers.
type Company struct {
	ID        int       `json:"cik"`
	Name      string    `json:"companyName"`
	SearchKey string    `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TickerSummary is a listed symbol with its latest financial metrics.
// Optional metrics are nil when the data vendor had nothing for them.
type TickerSummary struct {
	Ticker               string           `json:"ticker"`
	CompanyID            int              `json:"-"`
	CompanyName          string           `json:"companyName,omitempty"`
	MarketCap            *int64           `json:"marketCap"`
	PreviousClose        decimal.Decimal  `json:"previousClose"`
	PERatio              *decimal.Decimal `json:"peRatio"`
	ForwardPERatio       *decimal.Decimal `json:"forwardPeRatio"`
	DividendYield        *decimal.Decimal `json:"dividendYield"`   // percent, 0..99.99
	PayoutRatio          *decimal.Decimal `json:"payoutRatio"`     // percent, 0..99.99
	FiftyDayAverage      *decimal.Decimal `json:"fiftyDayAverage"` // moving average price
	TwoHundredDayAverage *decimal.Decimal `json:"twoHundredDayAverage"`
}
