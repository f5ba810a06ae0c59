package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

func (s *Store) CreateMatches(_ context.Context, matches []domain.Match) error {
	for _, m := range matches {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	return s.write(func(t *tables) error {
		paired := t.suggestionKeys()
		ids := make(map[string]bool, len(matches))
		for _, m := range matches {
			if _, exists := t.matches[m.ID]; exists || ids[m.ID] {
				return fmt.Errorf("%w: match %s already exists", domain.ErrStateConflict, m.ID)
			}
			ids[m.ID] = true

			if m.Type == domain.MatchManual {
				continue
			}
			key := suggestionKey(m)
			if paired[key] {
				return fmt.Errorf("%w: %s and %s already paired", domain.ErrStateConflict, m.TransactionID, m.AccountRef())
			}
			paired[key] = true
		}

		for _, m := range matches {
			t.matches[m.ID] = m
			t.matchOrder = append(t.matchOrder, m.ID)
		}
		return nil
	})
}

// suggestionKey identifies the scored pairing of a transaction and an
// account; manual matches may repeat a pairing
func suggestionKey(m domain.Match) string {
	return m.TransactionID + "|" + m.AccountRef().String()
}

func (t *tables) suggestionKeys() map[string]bool {
	keys := make(map[string]bool, len(t.matches))
	for _, m := range t.matches {
		if m.Type != domain.MatchManual {
			keys[suggestionKey(m)] = true
		}
	}
	return keys
}

func (s *Store) GetMatch(_ context.Context, id string) (domain.Match, error) {
	var (
		m  domain.Match
		ok bool
	)
	s.read(func(t *tables) {
		m, ok = t.matches[id]
	})
	if !ok {
		return domain.Match{}, fmt.Errorf("%w: match %s", domain.ErrNotFound, id)
	}
	return m, nil
}

func (s *Store) UpdateMatchStatus(_ context.Context, id string, from, to domain.MatchStatus, by *string, at time.Time) error {
	return s.write(func(t *tables) error {
		m, ok := t.matches[id]
		if !ok {
			return fmt.Errorf("%w: match %s", domain.ErrNotFound, id)
		}
		if m.Status != from {
			return fmt.Errorf("%w: match %s is %s, not %s", domain.ErrStateConflict, id, m.Status, from)
		}

		m.Status = to
		if to == domain.MatchConfirmed {
			m.ConfirmedAt = &at
			m.ConfirmedBy = by
		}
		t.matches[id] = m
		return nil
	})
}

func (s *Store) RejectSuggestedMatches(_ context.Context, companyID, transactionID string, ref domain.AccountRef, exceptID string) (int64, error) {
	var rejected int64
	err := s.write(func(t *tables) error {
		for _, id := range t.matchOrder {
			m := t.matches[id]
			if m.ID == exceptID || m.CompanyID != companyID || m.Status != domain.MatchSuggested {
				continue
			}
			if m.TransactionID != transactionID && m.AccountRef() != ref {
				continue
			}

			m.Status = domain.MatchRejected
			t.matches[id] = m
			rejected++
		}
		return nil
	})
	return rejected, err
}

func (s *Store) ListMatches(_ context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	matches := make([]domain.Match, 0)
	s.read(func(t *tables) {
		for _, id := range t.matchOrder {
			m := t.matches[id]
			if filter.CompanyID != "" && m.CompanyID != filter.CompanyID {
				continue
			}
			if filter.TransactionID != "" && m.TransactionID != filter.TransactionID {
				continue
			}
			if filter.Status != "" && m.Status != filter.Status {
				continue
			}
			matches = append(matches, m)
		}
	})
	return matches, nil
}

func (s *Store) CountMatchesByStatus(_ context.Context, companyID string) (map[domain.MatchStatus]int64, error) {
	counts := make(map[domain.MatchStatus]int64)
	s.read(func(t *tables) {
		for _, m := range t.matches {
			if m.CompanyID == companyID {
				counts[m.Status]++
			}
		}
	})
	return counts, nil
}
