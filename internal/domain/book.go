package domain

import "github.com/shopspring/decimal"

// Book is a catalog entry identified by the external catalog id.
// AvailableQuantity is the number of copies not currently reserved.
type Book struct {
	ExternalID        int64
	Title             string
	AuthorNames       []string
	Price             decimal.Decimal
	StockQuantity     int
	AvailableQuantity int
}
