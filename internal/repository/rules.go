package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

func (s *Store) ListActiveRules(ctx context.Context, companyID string) ([]domain.CategorizationRule, error) {
	var rows []categorizationRuleModel
	err := s.conn(ctx).
		Where("company_id = ? AND active = ?", companyID, true).
		Order("priority DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing categorization rules: %w", err)
	}

	return expandRules(rows), nil
}

// expandRules flattens stored rules into one rule per pattern, highest
// priority first
func expandRules(rows []categorizationRuleModel) []domain.CategorizationRule {
	rules := make([]domain.CategorizationRule, 0, len(rows))
	for _, r := range rows {
		rules = append(rules, r.expand()...)
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules
}

func (s *Store) CreateImport(ctx context.Context, record domain.ImportRecord) error {
	m := newBankImportModel(record)
	if err := s.conn(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("recording import %s: %w", record.ID, err)
	}
	return nil
}
