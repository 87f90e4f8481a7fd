package catalog

import "github.com/shopspring/decimal"

type Category struct {
	ID   int16
	Name string
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  *int16
}
