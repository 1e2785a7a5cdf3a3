// Package batch accumulates an operator's inline edits (price changes,
// discount changes, drag reorders) against a local copy of the catalog
// tree, and flushes them to the engines in one commit. It assumes a
// single operator session; committed writes simply overwrite whatever the
// store holds for the touched rows.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"priceboard/internal/domain"
	"priceboard/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownPrice means the staged edit targets a price that is not in
	// the local tree; the operator's view is stale.
	ErrUnknownPrice = errors.New("price not present in the local catalog")
)

// PriceUpdater is the slice of the pricing engine the batcher needs.
type PriceUpdater interface {
	UpdatePrice(ctx context.Context, edit service.PriceEdit) (*domain.Price, error)
}

// ProductReorderer is the slice of the ordering engine the batcher needs.
type ProductReorderer interface {
	ReorderProducts(ctx context.Context, categoryID *uuid.UUID, orderedIDs []uuid.UUID) (int, error)
}

// Batcher holds a draft tree the UI renders from, a snapshot of the last
// committed tree for rollback, and the pending edit maps. Commit fans out
// three independent sub-operation groups: amount updates, discount
// updates, then one reorder with the full draft ordering. Each group is
// atomic server-side; there is no cross-group rollback.
type Batcher struct {
	prices PriceUpdater
	orders ProductReorderer

	committed domain.Tree
	draft     domain.Tree

	pendingAmounts   map[uuid.UUID]decimal.Decimal
	pendingDiscounts map[uuid.UUID]*int
	orderDirty       bool
}

// New starts a batching session over a freshly fetched tree.
func New(prices PriceUpdater, orders ProductReorderer, tree domain.Tree) *Batcher {
	return &Batcher{
		prices:           prices,
		orders:           orders,
		committed:        tree.Clone(),
		draft:            tree.Clone(),
		pendingAmounts:   map[uuid.UUID]decimal.Decimal{},
		pendingDiscounts: map[uuid.UUID]*int{},
	}
}

// Draft returns the locally mutated tree the display renders from.
func (b *Batcher) Draft() domain.Tree {
	return b.draft
}

// Dirty reports whether anything is staged.
func (b *Batcher) Dirty() bool {
	return len(b.pendingAmounts) > 0 || len(b.pendingDiscounts) > 0 || b.orderDirty
}

// StageAmount records an inline amount edit and reflects it in the draft.
// Nothing is written to the store until Commit.
func (b *Batcher) StageAmount(priceID uuid.UUID, amount decimal.Decimal) error {
	price := b.findDraftPrice(priceID)
	if price == nil {
		return ErrUnknownPrice
	}

	price.Amount = amount
	b.pendingAmounts[priceID] = amount
	return nil
}

// StageDiscount records an inline discount edit; nil clears the discount.
func (b *Batcher) StageDiscount(priceID uuid.UUID, discount *int) error {
	price := b.findDraftPrice(priceID)
	if price == nil {
		return ErrUnknownPrice
	}

	if discount != nil {
		d := *discount
		discount = &d
	}
	price.Discount = discount
	b.pendingDiscounts[priceID] = discount
	return nil
}

// StageProductOrder rearranges a category's products in the draft. The
// permutation must cover exactly the category's current draft membership.
func (b *Batcher) StageProductOrder(categoryID uuid.UUID, orderedIDs []uuid.UUID) error {
	for i := range b.draft {
		category := &b.draft[i]
		if category.ID != categoryID {
			continue
		}

		byID := make(map[uuid.UUID]domain.ProductNode, len(category.Products))
		for _, p := range category.Products {
			byID[p.ID] = p
		}
		if len(orderedIDs) != len(byID) {
			return fmt.Errorf("order for category %s must list all %d products", categoryID, len(byID))
		}

		reordered := make([]domain.ProductNode, 0, len(orderedIDs))
		for _, id := range orderedIDs {
			p, ok := byID[id]
			if !ok {
				return fmt.Errorf("product %s is not in category %s", id, categoryID)
			}
			reordered = append(reordered, p)
			delete(byID, id)
		}

		category.Products = reordered
		b.orderDirty = true
		return nil
	}

	return fmt.Errorf("category %s is not in the local catalog", categoryID)
}

// Commit flushes pending changes: all amount updates, then all discount
// updates, then one reorder with the draft's full product ordering. On any
// failure the pending maps and the draft stay exactly as they were so the
// operator can retry; sub-operations that already succeeded stay applied
// server-side.
func (b *Batcher) Commit(ctx context.Context) error {
	if !b.Dirty() {
		return nil
	}

	var errs []error

	for _, id := range sortedKeys(b.pendingAmounts) {
		if _, err := b.prices.UpdatePrice(ctx, service.AmountOnlyEdit{PriceID: id, Amount: b.pendingAmounts[id]}); err != nil {
			errs = append(errs, fmt.Errorf("price update failed for %s: %w", id, err))
		}
	}

	for _, id := range sortedKeys(b.pendingDiscounts) {
		if _, err := b.prices.UpdatePrice(ctx, service.DiscountOnlyEdit{PriceID: id, Discount: b.pendingDiscounts[id]}); err != nil {
			errs = append(errs, fmt.Errorf("discount update failed for %s: %w", id, err))
		}
	}

	if b.orderDirty {
		if _, err := b.orders.ReorderProducts(ctx, nil, b.draftProductOrder()); err != nil {
			errs = append(errs, fmt.Errorf("reorder failed: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	b.committed = b.draft.Clone()
	b.clearPending()
	return nil
}

// Reset discards everything staged and restores the draft from the last
// committed snapshot.
func (b *Batcher) Reset() {
	b.draft = b.committed.Clone()
	b.clearPending()
}

func (b *Batcher) clearPending() {
	b.pendingAmounts = map[uuid.UUID]decimal.Decimal{}
	b.pendingDiscounts = map[uuid.UUID]*int{}
	b.orderDirty = false
}

func (b *Batcher) findDraftPrice(priceID uuid.UUID) *domain.Price {
	for i := range b.draft {
		for j := range b.draft[i].Products {
			prices := b.draft[i].Products[j].Prices
			for k := range prices {
				if prices[k].ID == priceID {
					return &prices[k]
				}
			}
		}
	}
	return nil
}

// draftProductOrder flattens the draft into the full product ordering,
// category by category.
func (b *Batcher) draftProductOrder() []uuid.UUID {
	ids := []uuid.UUID{}
	for i := range b.draft {
		for j := range b.draft[i].Products {
			ids = append(ids, b.draft[i].Products[j].ID)
		}
	}
	return ids
}

// sortedKeys makes commit order deterministic; map iteration is not.
func sortedKeys[V any](m map[uuid.UUID]V) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
