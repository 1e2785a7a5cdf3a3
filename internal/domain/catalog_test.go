package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice(t *testing.T) {
	five := 5
	fifty := 50
	hundred := 100
	zero := 0

	tests := []struct {
		name     string
		amount   string
		discount *int
		want     string
	}{
		{name: "no discount", amount: "999.99", discount: nil, want: "999.99"},
		{name: "zero discount", amount: "999.99", discount: &zero, want: "999.99"},
		{name: "five percent", amount: "100.00", discount: &five, want: "95"},
		{name: "half off", amount: "799.90", discount: &fifty, want: "399.95"},
		{name: "full discount", amount: "49.99", discount: &hundred, want: "0"},
		{name: "rounds to two decimals", amount: "99.99", discount: &five, want: "94.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got := EffectivePrice(amount, tt.discount)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestProperty_EffectivePriceBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("discounted price never exceeds the base amount", prop.ForAll(
		func(cents int64, discount int) bool {
			amount := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
			got := EffectivePrice(amount, &discount)
			return got.LessThanOrEqual(amount) && !got.IsNegative()
		},
		gen.Int64Range(1, 10_000_000),
		gen.IntRange(0, 100),
	))

	properties.Property("nil discount is the identity", prop.ForAll(
		func(cents int64) bool {
			amount := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
			return EffectivePrice(amount, nil).Equal(amount)
		},
		gen.Int64Range(1, 10_000_000),
	))

	properties.Property("result has at most two decimal places", prop.ForAll(
		func(cents int64, discount int) bool {
			amount := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
			got := EffectivePrice(amount, &discount)
			return got.Equal(got.Round(2))
		},
		gen.Int64Range(1, 10_000_000),
		gen.IntRange(1, 99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestTreeClone(t *testing.T) {
	discount := 10
	tree := Tree{
		{
			Category: Category{ID: uuid.New(), Name: "Apple"},
			Products: []ProductNode{
				{
					Product: Product{ID: uuid.New(), Name: "iPhone 15"},
					Prices: []Price{
						{ID: uuid.New(), Amount: decimal.NewFromInt(999), Discount: &discount},
					},
				},
			},
		},
	}

	clone := tree.Clone()

	// Mutating the clone must not leak into the original.
	clone[0].Name = "Samsung"
	clone[0].Products[0].Name = "Galaxy S24"
	clone[0].Products[0].Prices[0].Amount = decimal.NewFromInt(1)
	*clone[0].Products[0].Prices[0].Discount = 99

	assert.Equal(t, "Apple", tree[0].Name)
	assert.Equal(t, "iPhone 15", tree[0].Products[0].Name)
	assert.True(t, tree[0].Products[0].Prices[0].Amount.Equal(decimal.NewFromInt(999)))
	assert.Equal(t, 10, *tree[0].Products[0].Prices[0].Discount)

	assert.Nil(t, Tree(nil).Clone())
}

func TestMainPrice(t *testing.T) {
	product := &ProductNode{}
	assert.Nil(t, product.MainPrice())

	newest := Price{ID: uuid.New(), Amount: decimal.NewFromInt(200)}
	older := Price{ID: uuid.New(), Amount: decimal.NewFromInt(100)}
	product.Prices = []Price{newest, older}

	got := product.MainPrice()
	require.NotNil(t, got)
	assert.Equal(t, newest.ID, got.ID)
}
