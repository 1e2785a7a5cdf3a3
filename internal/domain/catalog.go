package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrimaryPriceLabel is the default label assigned to a product's main price
// variant when the caller does not supply one.
const PrimaryPriceLabel = "primary"

// Category is a top-level grouping of products (e.g. a phone brand).
// Position defines the display order across all categories; only the
// relative order matters, values are not required to be contiguous.
type Category struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	BrandColor string    `json:"brand_color" db:"brand_color"`
	Position   int       `json:"position" db:"position"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Product is a named item belonging to exactly one category. Position
// defines the display order of the product within its category.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	Position    int       `json:"position" db:"position"`
}

// Price is one priced variant of a product. Color, storage, warranty,
// label and dimensions are free-text variant tags; discount is a
// percentage in [0,100], nil meaning no discount.
type Price struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ProductID  uuid.UUID       `json:"product_id" db:"product_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Discount   *int            `json:"discount" db:"discount"`
	Color      string          `json:"color" db:"color"`
	Storage    string          `json:"storage" db:"storage"`
	Warranty   string          `json:"warranty" db:"warranty"`
	Label      string          `json:"label" db:"label"`
	Dimensions string          `json:"dimensions" db:"dimensions"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// EffectivePrice returns the discount-applied amount shown to end users.
// It is always derived, never persisted.
func (p *Price) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.Amount, p.Discount)
}

// EffectivePrice applies a percentage discount to an amount, rounded to
// two decimal places. A nil or zero discount leaves the amount unchanged.
func EffectivePrice(amount decimal.Decimal, discount *int) decimal.Decimal {
	if discount == nil || *discount == 0 {
		return amount
	}
	factor := decimal.NewFromInt(int64(100 - *discount)).Div(decimal.NewFromInt(100))
	return amount.Mul(factor).Round(2)
}

// ProductNode is a product with its price variants, prices ordered most
// recent first so that the first entry is the main price.
type ProductNode struct {
	Product
	Prices []Price `json:"prices"`
}

// CategoryNode is a category with its ordered products.
type CategoryNode struct {
	Category
	Products []ProductNode `json:"products"`
}

// Tree is the full catalog as read into memory: categories in position
// order, each with its products in position order.
type Tree []CategoryNode

// Clone returns a deep copy of the tree. Staged operator edits mutate the
// copy without touching the snapshot it was taken from.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for i, c := range t {
		node := c
		node.Products = make([]ProductNode, len(c.Products))
		for j, p := range c.Products {
			pn := p
			pn.Prices = make([]Price, len(p.Prices))
			copy(pn.Prices, p.Prices)
			for k := range pn.Prices {
				if d := pn.Prices[k].Discount; d != nil {
					dc := *d
					pn.Prices[k].Discount = &dc
				}
			}
			node.Products[j] = pn
		}
		out[i] = node
	}
	return out
}

// MainPrice returns the product's most recent price, or nil when the
// product has no prices yet.
func (p *ProductNode) MainPrice() *Price {
	if len(p.Prices) == 0 {
		return nil
	}
	return &p.Prices[0]
}
