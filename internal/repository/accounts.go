package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// accountModel returns the empty model of the table holding kind
func accountModel(kind domain.AccountKind) (any, error) {
	switch kind {
	case domain.Payable:
		return &payableModel{}, nil
	case domain.Receivable:
		return &receivableModel{}, nil
	}
	return nil, fmt.Errorf("%w: unknown account kind %q", domain.ErrInvalidInput, kind)
}

const openAccountPredicate = "company_id = ? AND bank_transaction_id IS NULL AND reconciled = ?"

func (s *Store) ListOpenAccounts(ctx context.Context, companyID string, kind domain.AccountKind) ([]domain.Account, error) {
	q := s.conn(ctx).Where(openAccountPredicate, companyID, false).Order("id ASC")

	switch kind {
	case domain.Payable:
		var rows []payableModel
		if err := q.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("listing open payables: %w", err)
		}
		accounts := make([]domain.Account, 0, len(rows))
		for _, r := range rows {
			accounts = append(accounts, r.toDomain())
		}
		return accounts, nil

	case domain.Receivable:
		var rows []receivableModel
		if err := q.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("listing open receivables: %w", err)
		}
		accounts := make([]domain.Account, 0, len(rows))
		for _, r := range rows {
			accounts = append(accounts, r.toDomain())
		}
		return accounts, nil
	}

	return nil, fmt.Errorf("%w: unknown account kind %q", domain.ErrInvalidInput, kind)
}

func (s *Store) GetAccount(ctx context.Context, ref domain.AccountRef) (domain.Account, error) {
	q := s.conn(ctx).Where("id = ?", ref.ID)

	switch ref.Kind {
	case domain.Payable:
		var m payableModel
		if err := q.First(&m).Error; err != nil {
			return domain.Account{}, notFound(err, "account "+ref.String())
		}
		return m.toDomain(), nil

	case domain.Receivable:
		var m receivableModel
		if err := q.First(&m).Error; err != nil {
			return domain.Account{}, notFound(err, "account "+ref.String())
		}
		return m.toDomain(), nil
	}

	return domain.Account{}, fmt.Errorf("%w: unknown account kind %q", domain.ErrInvalidInput, ref.Kind)
}

// linkAccount closes the account against transactionID if it is still open
func linkAccount(db *gorm.DB, model any, ref domain.AccountRef, transactionID string, at time.Time) *gorm.DB {
	return db.Model(model).
		Where("id = ? AND bank_transaction_id IS NULL AND reconciled = ?", ref.ID, false).
		Updates(map[string]any{
			"bank_transaction_id": transactionID,
			"reconciled":          true,
			"reconciled_at":       at,
			"status":              ref.Kind.SettledStatus(),
		})
}

func (s *Store) LinkAccount(ctx context.Context, ref domain.AccountRef, transactionID string, at time.Time) error {
	model, err := accountModel(ref.Kind)
	if err != nil {
		return err
	}

	res := linkAccount(s.conn(ctx), model, ref, transactionID, at)
	if res.Error != nil {
		return fmt.Errorf("linking account %s: %w", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.conditionalUpdateError(ctx, model, string(ref.Kind), ref.ID, "is already linked")
	}
	return nil
}

// SaveAccounts inserts payables and receivables, skipping ids already
// stored. The CLI uses it to seed accounts from a CSV file.
func (s *Store) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	var (
		payables    []payableModel
		receivables []receivableModel
	)
	for _, a := range accounts {
		if a.Kind == domain.Receivable {
			receivables = append(receivables, newReceivableModel(a))
		} else {
			payables = append(payables, newPayableModel(a))
		}
	}

	if len(payables) > 0 {
		db := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true})
		if err := db.CreateInBatches(&payables, insertBatchSize).Error; err != nil {
			return fmt.Errorf("saving payables: %w", err)
		}
	}
	if len(receivables) > 0 {
		db := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true})
		if err := db.CreateInBatches(&receivables, insertBatchSize).Error; err != nil {
			return fmt.Errorf("saving receivables: %w", err)
		}
	}
	return nil
}
