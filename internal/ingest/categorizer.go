package ingest

import (
	"sort"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// Categorizer applies the first matching rule in descending priority
type Categorizer struct {
	rules []domain.CategorizationRule
}

// NewCategorizer orders rules by priority, keeping the given order for ties
func NewCategorizer(rules []domain.CategorizationRule) *Categorizer {
	sorted := make([]domain.CategorizationRule, len(rules))
	copy(sorted, rules)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	return &Categorizer{rules: sorted}
}

// Categorize returns the category of the first matching rule, or nil
func (c *Categorizer) Categorize(description string) *string {
	for _, rule := range c.rules {
		if rule.Matches(description) {
			category := rule.Category
			return &category
		}
	}
	return nil
}
