package pricing

import "errors"

var (
	ErrNegativePrice = errors.New("unit price cannot be negative")
	ErrLineNotFound  = errors.New("cart line not found")
)

// CartItem is a menu entry that can be dropped into a cart.
type CartItem struct {
	Key       string
	RecipeID  *uint
	Name      string
	Category  string
	UnitPrice float64
}

type CartLine struct {
	Key       string  `json:"key"`
	RecipeID  *uint   `json:"recipe_id,omitempty"`
	ItemName  string  `json:"item_name"`
	Category  string  `json:"category,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

func (l CartLine) LineTotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Cart accumulates lines for an order in progress. The zero value is ready to use.
// A Cart is not safe for concurrent use.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) indexOf(key string) int {
	for i := range c.lines {
		if c.lines[i].Key == key {
			return i
		}
	}
	return -1
}

// AddItem increments the quantity of an existing line with the same key,
// otherwise appends a new line with quantity 1.
func (c *Cart) AddItem(item CartItem) error {
	if item.UnitPrice < 0 {
		return ErrNegativePrice
	}
	if i := c.indexOf(item.Key); i >= 0 {
		c.lines[i].Quantity++
		return nil
	}
	c.lines = append(c.lines, CartLine{
		Key:       item.Key,
		RecipeID:  item.RecipeID,
		ItemName:  item.Name,
		Category:  item.Category,
		Quantity:  1,
		UnitPrice: item.UnitPrice,
	})
	return nil
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less removes it.
func (c *Cart) UpdateQuantity(key string, quantity int) error {
	i := c.indexOf(key)
	if i < 0 {
		if quantity <= 0 {
			return nil
		}
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.RemoveItem(key)
		return nil
	}
	c.lines[i].Quantity = quantity
	return nil
}

func (c *Cart) RemoveItem(key string) {
	if i := c.indexOf(key); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Totals(discount, taxRate float64) SaleTotals {
	return ComputeTotals(c.lines, discount, taxRate)
}
