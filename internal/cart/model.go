package cart

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Item is one product line of a cart. UnitPrice is the catalog price
// captured when the product was first added and never refreshed.
type Item struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

func (it Item) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cart is the aggregate root. Items are kept in the order they were first added.
type Cart struct {
	ID        string
	Items     []Item
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id string, now time.Time) *Cart {
	return &Cart{
		ID:        id,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Line returns the line for productID, if the cart holds one.
func (c *Cart) Line(productID int64) (Item, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return Item{}, false
}

// MaxQuantity is the largest quantity a line can hold; quantities are stored as int4.
const MaxQuantity = math.MaxInt32

func validQuantity(quantity int) bool {
	return quantity >= 1 && quantity <= MaxQuantity
}

// AddOrMergeLine increments an existing line by one, keeping its price,
// or appends a new line with quantity 1 at unitPrice. A line already at
// MaxQuantity is left as is and ErrInvalidQuantity returned.
func (c *Cart) AddOrMergeLine(productID int64, unitPrice decimal.Decimal) (Item, error) {
	if i := c.indexOf(productID); i >= 0 {
		if c.Items[i].Quantity >= MaxQuantity {
			return Item{}, ErrInvalidQuantity
		}
		c.Items[i].Quantity++
		return c.Items[i], nil
	}

	it := Item{ProductID: productID, Quantity: 1, UnitPrice: unitPrice}
	c.Items = append(c.Items, it)
	return it, nil
}

func (c *Cart) SetLineQuantity(productID int64, quantity int) (Item, error) {
	if !validQuantity(quantity) {
		return Item{}, ErrInvalidQuantity
	}
	i := c.indexOf(productID)
	if i < 0 {
		return Item{}, ErrItemNotInCart
	}
	c.Items[i].Quantity = quantity
	return c.Items[i], nil
}

// RemoveLine drops the line for productID. It reports whether a line was removed.
func (c *Cart) RemoveLine(productID int64) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.Items = []Item{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Total is computed on demand from the lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Validate checks the aggregate invariants: one line per product and
// every quantity between 1 and MaxQuantity.
func (c *Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c.Items))
	for _, it := range c.Items {
		if !validQuantity(it.Quantity) {
			return ErrInvalidQuantity
		}
		if _, dup := seen[it.ProductID]; dup {
			return ErrDuplicateLine
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}
