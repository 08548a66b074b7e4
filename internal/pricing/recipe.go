package pricing

import "errors"

// DefaultIngredientUnit is the unit given to a freshly added ingredient row.
const DefaultIngredientUnit = "kg"

var (
	ErrRowOutOfRange = errors.New("ingredient row out of range")
	ErrBoundRow      = errors.New("cost and unit follow the linked inventory item")
)

// InventoryRef is the slice of an inventory item a recipe row binds to.
type InventoryRef struct {
	ID          uint
	Name        string
	Unit        string
	CostPerUnit float64
}

type IngredientRow struct {
	InventoryItemID *uint   `json:"inventory_item_id,omitempty"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Cost            float64 `json:"cost"`

	costPerUnit float64
}

func (r IngredientRow) Bound() bool {
	return r.InventoryItemID != nil
}

// RecipeDraft is a recipe being composed. Bound rows keep their cost equal to
// quantity * costPerUnit of the linked inventory item.
type RecipeDraft struct {
	Price float64
	Rows  []IngredientRow
}

// AddIngredient appends a blank manual row and returns its index.
func (d *RecipeDraft) AddIngredient() int {
	d.Rows = append(d.Rows, IngredientRow{Unit: DefaultIngredientUnit})
	return len(d.Rows) - 1
}

func (d *RecipeDraft) row(i int) (*IngredientRow, error) {
	if i < 0 || i >= len(d.Rows) {
		return nil, ErrRowOutOfRange
	}
	return &d.Rows[i], nil
}

func (d *RecipeDraft) SelectInventoryItem(i int, item InventoryRef) error {
	r, err := d.row(i)
	if err != nil {
		return err
	}
	id := item.ID
	r.InventoryItemID = &id
	r.Name = item.Name
	r.Unit = item.Unit
	r.costPerUnit = item.CostPerUnit
	r.Cost = r.Quantity * item.CostPerUnit
	return nil
}

// Unbind turns a bound row back into a manual one, keeping its last cost.
func (d *RecipeDraft) Unbind(i int) error {
	r, err := d.row(i)
	if err != nil {
		return err
	}
	r.InventoryItemID = nil
	r.costPerUnit = 0
	return nil
}

func (d *RecipeDraft) SetQuantity(i int, quantity float64) error {
	r, err := d.row(i)
	if err != nil {
		return err
	}
	r.Quantity = quantity
	if r.Bound() {
		r.Cost = quantity * r.costPerUnit
	}
	return nil
}

func (d *RecipeDraft) SetCost(i int, cost float64) error {
	r, err := d.row(i)
	if err != nil {
		return err
	}
	if r.Bound() {
		return ErrBoundRow
	}
	r.Cost = cost
	return nil
}

func (d *RecipeDraft) SetUnit(i int, unit string) error {
	r, err := d.row(i)
	if err != nil {
		return err
	}
	if r.Bound() {
		return ErrBoundRow
	}
	r.Unit = unit
	return nil
}

func (d *RecipeDraft) SetName(i int, name string) error {
	r, err := d.row(i)
	if err != nil {
		return err
	}
	r.Name = name
	return nil
}

func (d *RecipeDraft) RemoveIngredient(i int) error {
	if _, err := d.row(i); err != nil {
		return err
	}
	d.Rows = append(d.Rows[:i], d.Rows[i+1:]...)
	return nil
}

func (d *RecipeDraft) TotalCost() float64 {
	return ComputeTotalCost(d.Rows)
}

func (d *RecipeDraft) Margin() float64 {
	return ComputeMargin(d.Price, d.TotalCost())
}

func ComputeTotalCost(rows []IngredientRow) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Cost
	}
	return sum
}

// ComputeMargin returns the margin percentage. It only short-circuits to 0 at
// the boundary (price or cost not positive); loss-making recipes yield a
// negative percentage.
func ComputeMargin(price, totalCost float64) float64 {
	if price <= 0 || totalCost <= 0 {
		return 0
	}
	return (price - totalCost) / price * 100
}

// UnitCost is the cost of a single serving.
func UnitCost(totalCost float64, servings int) float64 {
	if servings <= 0 {
		return totalCost
	}
	return totalCost / float64(servings)
}

// RecommendedPrice is the price that yields a 30% markup over cost.
func RecommendedPrice(totalCost float64) float64 {
	return totalCost * 1.3
}
