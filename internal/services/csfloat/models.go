package csfloat

import "github.com/shopspring/decimal"

// Cents is an amount in minor currency units, the unit CSFloat uses for
// every price and balance.
type Cents int64

// Dollars renders c in major units for display.
func (c Cents) Dollars() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Cents) String() string {
	return "$" + c.Dollars().StringFixed(2)
}

// OwnBuyOrder is a buy order placed by the authenticated account.
type OwnBuyOrder struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"created_at"`
	MarketHashName string `json:"market_hash_name"`
	Quantity       int    `json:"qty"`
	Price          Cents  `json:"price"`
}

// MarketBuyOrder is a competing bid on a listing. It has no identifier
// because it cannot be addressed by this account.
type MarketBuyOrder struct {
	MarketHashName string `json:"market_hash_name"`
	Quantity       int    `json:"qty"`
	Price          Cents  `json:"price"`
}

// Listing is a sellable instance of an item, with the item's own fields
// merged in.
type Listing struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"created_at"`
	Type           string `json:"type"`
	Price          Cents  `json:"price"`
	MarketHashName string `json:"market_hash_name"`
	IsCommodity    bool   `json:"is_commodity"`
	TypeName       string `json:"type_name"`
}
