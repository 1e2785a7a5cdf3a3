package batch

import (
	"context"
	"errors"
	"testing"

	"priceboard/internal/domain"
	"priceboard/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPriceUpdater records edits and can be told to fail specific prices.
type mockPriceUpdater struct {
	applied []service.PriceEdit
	failIDs map[uuid.UUID]error
}

func newMockPriceUpdater() *mockPriceUpdater {
	return &mockPriceUpdater{failIDs: map[uuid.UUID]error{}}
}

func (m *mockPriceUpdater) UpdatePrice(ctx context.Context, edit service.PriceEdit) (*domain.Price, error) {
	var id uuid.UUID
	switch e := edit.(type) {
	case service.AmountOnlyEdit:
		id = e.PriceID
	case service.DiscountOnlyEdit:
		id = e.PriceID
	case service.FullPriceEdit:
		id = e.PriceID
	}
	if err, ok := m.failIDs[id]; ok {
		return nil, err
	}
	m.applied = append(m.applied, edit)
	return &domain.Price{ID: id}, nil
}

type mockReorderer struct {
	calls [][]uuid.UUID
	err   error
}

func (m *mockReorderer) ReorderProducts(ctx context.Context, categoryID *uuid.UUID, orderedIDs []uuid.UUID) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.calls = append(m.calls, orderedIDs)
	return len(orderedIDs), nil
}

func sessionTree() (domain.Tree, []uuid.UUID) {
	categoryID := uuid.New()
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	pr1, pr2, pr3 := uuid.New(), uuid.New(), uuid.New()

	ten := 10
	tree := domain.Tree{
		{
			Category: domain.Category{ID: categoryID, Name: "Apple"},
			Products: []domain.ProductNode{
				{
					Product: domain.Product{ID: p1, Name: "iPhone 15", CategoryID: categoryID},
					Prices:  []domain.Price{{ID: pr1, ProductID: p1, Amount: decimal.NewFromInt(999)}},
				},
				{
					Product: domain.Product{ID: p2, Name: "iPhone SE", CategoryID: categoryID},
					Prices:  []domain.Price{{ID: pr2, ProductID: p2, Amount: decimal.NewFromInt(429), Discount: &ten}},
				},
				{
					Product: domain.Product{ID: p3, Name: "iPad", CategoryID: categoryID},
					Prices:  []domain.Price{{ID: pr3, ProductID: p3, Amount: decimal.NewFromInt(599)}},
				},
			},
		},
	}
	return tree, []uuid.UUID{pr1, pr2, pr3}
}

func TestStageAmountMutatesDraftOnly(t *testing.T) {
	tree, priceIDs := sessionTree()
	b := New(newMockPriceUpdater(), &mockReorderer{}, tree)

	require.NoError(t, b.StageAmount(priceIDs[0], decimal.NewFromInt(899)))

	assert.True(t, b.Dirty())
	assert.True(t, b.Draft()[0].Products[0].Prices[0].Amount.Equal(decimal.NewFromInt(899)))
	// The snapshot the session started from is untouched.
	assert.True(t, tree[0].Products[0].Prices[0].Amount.Equal(decimal.NewFromInt(999)))
}

func TestStageUnknownPrice(t *testing.T) {
	tree, _ := sessionTree()
	b := New(newMockPriceUpdater(), &mockReorderer{}, tree)

	err := b.StageAmount(uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUnknownPrice)

	err = b.StageDiscount(uuid.New(), nil)
	assert.ErrorIs(t, err, ErrUnknownPrice)

	assert.False(t, b.Dirty())
}

func TestStageDiscountCopiesPointer(t *testing.T) {
	tree, priceIDs := sessionTree()
	b := New(newMockPriceUpdater(), &mockReorderer{}, tree)

	d := 25
	require.NoError(t, b.StageDiscount(priceIDs[0], &d))
	d = 99

	assert.Equal(t, 25, *b.Draft()[0].Products[0].Prices[0].Discount)
}

func TestStageProductOrderValidation(t *testing.T) {
	tree, _ := sessionTree()
	b := New(newMockPriceUpdater(), &mockReorderer{}, tree)
	categoryID := tree[0].ID
	products := tree[0].Products

	// Subset of the category's products.
	err := b.StageProductOrder(categoryID, []uuid.UUID{products[0].ID})
	assert.Error(t, err)

	// An id from outside the category.
	err = b.StageProductOrder(categoryID, []uuid.UUID{products[0].ID, products[1].ID, uuid.New()})
	assert.Error(t, err)

	// Unknown category.
	err = b.StageProductOrder(uuid.New(), []uuid.UUID{products[0].ID})
	assert.Error(t, err)

	assert.False(t, b.Dirty())

	// Full permutation is accepted and reflected in the draft.
	err = b.StageProductOrder(categoryID, []uuid.UUID{products[2].ID, products[0].ID, products[1].ID})
	require.NoError(t, err)
	assert.True(t, b.Dirty())
	assert.Equal(t, products[2].ID, b.Draft()[0].Products[0].ID)
}

func TestCommitAppliesEverythingAndClears(t *testing.T) {
	tree, priceIDs := sessionTree()
	prices := newMockPriceUpdater()
	orders := &mockReorderer{}
	b := New(prices, orders, tree)
	products := tree[0].Products

	require.NoError(t, b.StageAmount(priceIDs[0], decimal.NewFromInt(899)))
	d := 15
	require.NoError(t, b.StageDiscount(priceIDs[1], &d))
	require.NoError(t, b.StageProductOrder(tree[0].ID,
		[]uuid.UUID{products[1].ID, products[2].ID, products[0].ID}))

	require.NoError(t, b.Commit(context.Background()))

	assert.Len(t, prices.applied, 2)
	require.Len(t, orders.calls, 1)
	assert.Equal(t, []uuid.UUID{products[1].ID, products[2].ID, products[0].ID}, orders.calls[0])

	assert.False(t, b.Dirty())

	// The committed snapshot now reflects the draft: Reset keeps the edits.
	b.Reset()
	assert.True(t, b.Draft()[0].Products[2].Prices[0].Amount.Equal(decimal.NewFromInt(899)))
}

func TestCommitCleanSessionIsNoOp(t *testing.T) {
	tree, _ := sessionTree()
	prices := newMockPriceUpdater()
	orders := &mockReorderer{}
	b := New(prices, orders, tree)

	require.NoError(t, b.Commit(context.Background()))
	assert.Empty(t, prices.applied)
	assert.Empty(t, orders.calls)
}

func TestCommitPartialFailureKeepsPendingEdits(t *testing.T) {
	tree, priceIDs := sessionTree()
	prices := newMockPriceUpdater()
	storeErr := errors.New("store unavailable")
	prices.failIDs[priceIDs[1]] = storeErr

	b := New(prices, &mockReorderer{}, tree)

	require.NoError(t, b.StageAmount(priceIDs[0], decimal.NewFromInt(899)))
	require.NoError(t, b.StageAmount(priceIDs[1], decimal.NewFromInt(399)))

	err := b.Commit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)

	// The independent edit still went through server-side.
	assert.Len(t, prices.applied, 1)

	// Nothing staged was dropped; a retry resends both edits.
	assert.True(t, b.Dirty())
	delete(prices.failIDs, priceIDs[1])
	require.NoError(t, b.Commit(context.Background()))
	assert.Len(t, prices.applied, 3)
	assert.False(t, b.Dirty())
}

func TestCommitReorderFailureKeepsOrderDirty(t *testing.T) {
	tree, _ := sessionTree()
	orders := &mockReorderer{err: errors.New("conflict")}
	b := New(newMockPriceUpdater(), orders, tree)
	products := tree[0].Products

	require.NoError(t, b.StageProductOrder(tree[0].ID,
		[]uuid.UUID{products[2].ID, products[1].ID, products[0].ID}))

	err := b.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, b.Dirty())

	orders.err = nil
	require.NoError(t, b.Commit(context.Background()))
	assert.Len(t, orders.calls, 1)
}

func TestResetRestoresCommittedSnapshot(t *testing.T) {
	tree, priceIDs := sessionTree()
	b := New(newMockPriceUpdater(), &mockReorderer{}, tree)

	require.NoError(t, b.StageAmount(priceIDs[0], decimal.NewFromInt(1)))
	require.NoError(t, b.StageDiscount(priceIDs[0], nil))
	b.Reset()

	assert.False(t, b.Dirty())
	assert.True(t, b.Draft()[0].Products[0].Prices[0].Amount.Equal(decimal.NewFromInt(999)))
}
