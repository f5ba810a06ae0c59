package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// accountColumn is the match column referencing accounts of kind
func accountColumn(kind domain.AccountKind) string {
	if kind == domain.Receivable {
		return "conta_receber_id"
	}
	return "conta_pagar_id"
}

func (s *Store) CreateMatches(ctx context.Context, matches []domain.Match) error {
	if len(matches) == 0 {
		return nil
	}

	rows := make([]matchModel, 0, len(matches))
	for _, m := range matches {
		if err := m.Validate(); err != nil {
			return err
		}
		rows = append(rows, newMatchModel(m))
	}

	if err := s.conn(ctx).Create(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: pairing already suggested", domain.ErrStateConflict)
		}
		return fmt.Errorf("creating matches: %w", err)
	}
	return nil
}

func (s *Store) GetMatch(ctx context.Context, id string) (domain.Match, error) {
	var m matchModel
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return domain.Match{}, notFound(err, "match "+id)
	}
	return m.toDomain(), nil
}

func (s *Store) UpdateMatchStatus(ctx context.Context, id string, from, to domain.MatchStatus, by *string, at time.Time) error {
	updates := map[string]any{"status": string(to)}
	if to == domain.MatchConfirmed {
		updates["confirmed_at"] = at
		updates["confirmed_by"] = by
	}

	res := s.conn(ctx).
		Model(&matchModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating match %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.conditionalUpdateError(ctx, &matchModel{}, "match", id, "is not "+string(from))
	}
	return nil
}

// rejectSiblings rejects the suggested matches, other than exceptID, of
// transactionID or of the account ref
func rejectSiblings(db *gorm.DB, companyID, transactionID string, ref domain.AccountRef, exceptID string) *gorm.DB {
	related := db.Session(&gorm.Session{NewDB: true}).
		Where("bank_transaction_id = ?", transactionID).
		Or(accountColumn(ref.Kind)+" = ?", ref.ID)

	return db.Model(&matchModel{}).
		Where("company_id = ? AND status = ? AND id <> ?", companyID, string(domain.MatchSuggested), exceptID).
		Where(related).
		Update("status", string(domain.MatchRejected))
}

func (s *Store) RejectSuggestedMatches(ctx context.Context, companyID, transactionID string, ref domain.AccountRef, exceptID string) (int64, error) {
	res := rejectSiblings(s.conn(ctx), companyID, transactionID, ref, exceptID)
	if res.Error != nil {
		return 0, fmt.Errorf("rejecting suggested matches: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	q := s.conn(ctx).Where("company_id = ?", filter.CompanyID)
	if filter.TransactionID != "" {
		q = q.Where("bank_transaction_id = ?", filter.TransactionID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var rows []matchModel
	if err := q.Order("created_at ASC").Order("match_score DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}

	matches := make([]domain.Match, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, r.toDomain())
	}
	return matches, nil
}

func (s *Store) CountMatchesByStatus(ctx context.Context, companyID string) (map[domain.MatchStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := s.conn(ctx).
		Model(&matchModel{}).
		Select("status, COUNT(*) AS total").
		Where("company_id = ?", companyID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}

	counts := make(map[domain.MatchStatus]int64, len(rows))
	for _, r := range rows {
		counts[domain.MatchStatus(r.Status)] = r.Total
	}
	return counts, nil
}
