package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// insertIgnoringDuplicates inserts rows, leaving any (company_id, fitid)
// already stored untouched
func insertIgnoringDuplicates(db *gorm.DB, rows []bankTransactionModel) *gorm.DB {
	return db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, insertBatchSize)
}

func (s *Store) InsertTransactions(ctx context.Context, txns []domain.BankTransaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	rows := make([]bankTransactionModel, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, newBankTransactionModel(t))
	}

	res := insertIgnoringDuplicates(s.conn(ctx), rows)
	if res.Error != nil {
		return 0, fmt.Errorf("inserting bank transactions: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (domain.BankTransaction, error) {
	var m bankTransactionModel
	if err := s.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return domain.BankTransaction{}, notFound(err, "transaction "+id)
	}
	return m.toDomain(), nil
}

func (s *Store) ListUnreconciledTransactions(ctx context.Context, companyID string) ([]domain.BankTransaction, error) {
	var rows []bankTransactionModel
	err := s.conn(ctx).
		Where("company_id = ? AND reconciled = ?", companyID, false).
		Order("date ASC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing unreconciled transactions: %w", err)
	}

	txns := make([]domain.BankTransaction, 0, len(rows))
	for _, r := range rows {
		txns = append(txns, r.toDomain())
	}
	return txns, nil
}

func (s *Store) MarkTransactionReconciled(ctx context.Context, id, by string, at time.Time) error {
	res := s.conn(ctx).
		Model(&bankTransactionModel{}).
		Where("id = ? AND reconciled = ?", id, false).
		Updates(map[string]any{
			"reconciled":    true,
			"reconciled_at": at,
			"reconciled_by": by,
		})
	if res.Error != nil {
		return fmt.Errorf("reconciling transaction %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.conditionalUpdateError(ctx, &bankTransactionModel{}, "transaction", id, "is already reconciled")
	}
	return nil
}

func (s *Store) CountTransactions(ctx context.Context, companyID string) (int64, int64, error) {
	var total, unreconciled int64

	if err := s.conn(ctx).Model(&bankTransactionModel{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("counting transactions: %w", err)
	}
	err := s.conn(ctx).Model(&bankTransactionModel{}).
		Where("company_id = ? AND reconciled = ?", companyID, false).
		Count(&unreconciled).Error
	if err != nil {
		return 0, 0, fmt.Errorf("counting unreconciled transactions: %w", err)
	}

	return total, unreconciled, nil
}
