package cart

import "github.com/shopspring/decimal"

type ItemView struct {
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// View is a cart snapshot. Version is the committed version the snapshot
// was taken at; it increases with every persisted mutation.
type View struct {
	ID         string
	Version    int64
	Items      []ItemView
	TotalPrice decimal.Decimal
}

func NewItemView(it Item) ItemView {
	return ItemView{
		ProductID:  it.ProductID,
		Quantity:   it.Quantity,
		UnitPrice:  it.UnitPrice,
		TotalPrice: it.LineTotal(),
	}
}

func NewView(c *Cart) View {
	v := View{
		ID:         c.ID,
		Version:    c.Version,
		Items:      make([]ItemView, 0, len(c.Items)),
		TotalPrice: c.Total(),
	}
	for _, it := range c.Items {
		v.Items = append(v.Items, NewItemView(it))
	}
	return v
}
