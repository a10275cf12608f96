// internal/domain/cart/entity.go
package cart

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
)

// Line is one menu item in the cart. Quantity is always at least 1.
type Line struct {
	ItemID   string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category,omitempty"`
	ImageRef string          `json:"image,omitempty"`
}

// Subtotal is price × quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// lineFromItem starts a cart line for a menu item
func lineFromItem(item menu.Item) Line {
	return Line{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: 1,
		Category: item.Category,
		ImageRef: item.Image,
	}
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int             `json:"item_count"`     // Number of unique items
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	Total         decimal.Decimal `json:"total"`
}

func calculateTotals(lines []Line) Totals {
	totals := Totals{
		ItemCount: len(lines),
		Total:     decimal.Zero,
	}

	for _, line := range lines {
		totals.TotalQuantity += line.Quantity
		totals.Total = totals.Total.Add(line.Subtotal())
	}
	return totals
}
