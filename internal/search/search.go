// Package search filters the in-memory catalog tree by free text. It only
// reads; nothing here touches the store.
package search

import (
	"fmt"
	"sort"
	"strings"

	"priceboard/internal/domain"

	"github.com/shopspring/decimal"
)

// PreviewLimit caps the live search dropdown.
const PreviewLimit = 5

// Result is one matching price row, denormalized for display.
type Result struct {
	CategoryName string          `json:"category_name"`
	ProductName  string          `json:"product_name"`
	Amount       decimal.Decimal `json:"amount"`
	Discount     *int            `json:"discount,omitempty"`
	Color        string          `json:"color,omitempty"`
	Storage      string          `json:"storage,omitempty"`
	Warranty     string          `json:"warranty,omitempty"`
}

// RankedResults is the capped live-preview view of a search: the first
// PreviewLimit matches in rank order plus how many more there are.
type RankedResults struct {
	Results   []Result `json:"results"`
	Remaining int      `json:"remaining"`
	Total     int      `json:"total"`
}

// matchText is what the term is matched against: product name, product
// description and owning category name, lowercased.
func matchText(categoryName string, p *domain.ProductNode) string {
	return strings.ToLower(fmt.Sprintf("%s %s %s", p.Name, p.Description, categoryName))
}

// rankText orders matches: entries whose text starts with the term come
// first, ties break lexicographically.
func rankText(r Result) string {
	return strings.ToLower(r.ProductName + " " + r.CategoryName)
}

// Search returns the ranked, capped preview for a term. A blank term
// clears the preview.
func Search(term string, tree domain.Tree) RankedResults {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return RankedResults{Results: []Result{}}
	}

	matches := []Result{}
	for i := range tree {
		category := &tree[i]
		for j := range category.Products {
			product := &category.Products[j]
			if !strings.Contains(matchText(category.Name, product), term) {
				continue
			}
			for _, price := range product.Prices {
				matches = append(matches, Result{
					CategoryName: category.Name,
					ProductName:  product.Name,
					Amount:       price.Amount,
					Discount:     price.Discount,
					Color:        price.Color,
					Storage:      price.Storage,
					Warranty:     price.Warranty,
				})
			}
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		at, bt := rankText(matches[a]), rankText(matches[b])
		aPrefix, bPrefix := strings.HasPrefix(at, term), strings.HasPrefix(bt, term)
		if aPrefix != bPrefix {
			return aPrefix
		}
		return at < bt
	})

	total := len(matches)
	capped := matches
	if len(capped) > PreviewLimit {
		capped = capped[:PreviewLimit]
	}

	return RankedResults{
		Results:   capped,
		Remaining: total - len(capped),
		Total:     total,
	}
}

// FilterTree rewrites the tree to only the matching products; categories
// left with no matching products drop out entirely. A blank term returns
// the tree unchanged.
func FilterTree(term string, tree domain.Tree) domain.Tree {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tree
	}

	filtered := domain.Tree{}
	for i := range tree {
		category := tree[i]
		products := []domain.ProductNode{}
		for j := range category.Products {
			product := category.Products[j]
			if strings.Contains(matchText(category.Name, &product), term) {
				products = append(products, product)
			}
		}
		if len(products) == 0 {
			continue
		}
		node := category
		node.Products = products
		filtered = append(filtered, node)
	}

	return filtered
}
