// Package category assigns spending categories to parsed transactions using
// a layered fallback strategy: the user's own taxonomy first, then a small
// builtin table, then categorization history, then Unknown.
package category

import (
	"context"
	"fmt"
	"strings"

	"expensetracker/backend/internal/domain"
)

// Unknown is the fallback label when no strategy produces a category.
const Unknown = "Unknown"

// Store reads the user's category taxonomy.
type Store interface {
	FindCategories(ctx context.Context, userID string) ([]domain.Category, error)
}

// HistoryStore reads prior categorizations by statement record.
type HistoryStore interface {
	FindByRecord(ctx context.Context, userID, statementRecord string) ([]domain.ExpenseHistory, error)
}

// builtin is the secondary keyword table, consulted after the user's
// taxonomy. Order matters for prefix-match results.
var builtin = []domain.Category{
	{Category: "Self Transfer", Keywords: []string{"Self"}},
	{Category: "Split", Keywords: []string{"Split"}},
}

// Resolver maps transaction descriptions to category labels. The read path is
// side-effect-free and safe for concurrent use.
type Resolver struct {
	categories Store
	history    HistoryStore
}

// NewResolver creates a resolver backed by the given stores.
func NewResolver(categories Store, history HistoryStore) *Resolver {
	return &Resolver{
		categories: categories,
		history:    history,
	}
}

// Resolve produces a category label for one transaction. Precedence, first
// match wins: exact keyword/category-name match, 3-character prefix match
// (all candidates joined with " / "), the builtin table, historical lookup by
// statement record, Unknown. The user's declared taxonomy outranks learned
// history, so manual category edits take effect immediately.
func (r *Resolver) Resolve(ctx context.Context, userID, comment, statementRecord string) (string, error) {
	if strings.TrimSpace(comment) != "" {
		categories, err := r.categories.FindCategories(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("resolve category: %w", err)
		}

		if label, ok := matchTaxonomy(categories, comment); ok {
			return label, nil
		}
		if label, ok := matchTaxonomy(builtin, comment); ok {
			return label, nil
		}
	}

	entries, err := r.history.FindByRecord(ctx, userID, statementRecord)
	if err != nil {
		return "", fmt.Errorf("resolve category: %w", err)
	}
	if label := joinHistory(entries); label != "" {
		return label, nil
	}

	return Unknown, nil
}

// matchTaxonomy applies the exact pass, then the prefix pass, over the given
// categories in insertion order.
func matchTaxonomy(categories []domain.Category, comment string) (string, bool) {
	for _, c := range categories {
		if strings.EqualFold(c.Category, comment) {
			return c.Category, true
		}
		for _, kw := range c.Keywords {
			if strings.EqualFold(kw, comment) {
				return c.Category, true
			}
		}
	}

	// Ambiguous prefix matches are all surfaced, joined, rather than picking
	// one silently.
	var matched []string
	for _, c := range categories {
		if prefixMatch(c.Category, comment) {
			matched = append(matched, c.Category)
			continue
		}
		for _, kw := range c.Keywords {
			if prefixMatch(kw, comment) {
				matched = append(matched, c.Category)
				break
			}
		}
	}
	if len(matched) > 0 {
		return strings.TrimSpace(strings.Join(matched, " / ")), true
	}

	return "", false
}

func prefixMatch(candidate, comment string) bool {
	return candidate != "" && strings.EqualFold(prefix3(candidate), prefix3(comment))
}

func prefix3(s string) string {
	if len(s) > 3 {
		return s[:3]
	}
	return s
}

// joinHistory flattens historical category sets into one label, preserving
// entry order.
func joinHistory(entries []domain.ExpenseHistory) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, strings.Join(e.Category, " / "))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
