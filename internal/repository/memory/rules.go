package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

func (s *Store) ListActiveRules(_ context.Context, companyID string) ([]domain.CategorizationRule, error) {
	rules := make([]domain.CategorizationRule, 0)
	s.read(func(t *tables) {
		for _, r := range t.rules {
			if r.CompanyID == companyID && r.Active {
				rules = append(rules, r)
			}
		}
	})

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}

func (s *Store) CreateImport(_ context.Context, record domain.ImportRecord) error {
	return s.write(func(t *tables) error {
		if _, exists := t.imports[record.ID]; exists {
			return fmt.Errorf("%w: import %s already exists", domain.ErrStateConflict, record.ID)
		}
		t.imports[record.ID] = record
		return nil
	})
}

// Import returns a recorded import
func (s *Store) Import(id string) (domain.ImportRecord, bool) {
	var (
		record domain.ImportRecord
		ok     bool
	)
	s.read(func(t *tables) {
		record, ok = t.imports[id]
	})
	return record, ok
}

// AddAccounts seeds payables and receivables, replacing any with the same
// reference
func (s *Store) AddAccounts(accounts ...domain.Account) {
	_ = s.write(func(t *tables) error {
		for _, a := range accounts {
			t.accounts[a.Ref()] = a
		}
		return nil
	})
}

// AddRules seeds categorization rules
func (s *Store) AddRules(rules ...domain.CategorizationRule) {
	_ = s.write(func(t *tables) error {
		t.rules = append(t.rules, rules...)
		return nil
	})
}

// SaveAccounts is AddAccounts for callers that also drive the MySQL store
func (s *Store) SaveAccounts(_ context.Context, accounts []domain.Account) error {
	s.AddAccounts(accounts...)
	return nil
}
