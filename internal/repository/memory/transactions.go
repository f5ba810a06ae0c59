package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

func fitidKey(companyID, fitid string) string {
	return companyID + "\x00" + fitid
}

func (s *Store) InsertTransactions(_ context.Context, txns []domain.BankTransaction) (int, error) {
	inserted := 0
	err := s.write(func(t *tables) error {
		for _, txn := range txns {
			key := fitidKey(txn.CompanyID, txn.FITID)
			if _, exists := t.fitids[key]; exists {
				continue
			}
			if _, exists := t.transactions[txn.ID]; exists {
				return fmt.Errorf("%w: transaction %s already exists", domain.ErrStateConflict, txn.ID)
			}

			t.fitids[key] = txn.ID
			t.transactions[txn.ID] = txn
			t.txnOrder = append(t.txnOrder, txn.ID)
			inserted++
		}
		return nil
	})
	return inserted, err
}

func (s *Store) GetTransaction(_ context.Context, id string) (domain.BankTransaction, error) {
	var (
		txn domain.BankTransaction
		ok  bool
	)
	s.read(func(t *tables) {
		txn, ok = t.transactions[id]
	})
	if !ok {
		return domain.BankTransaction{}, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
	}
	return txn, nil
}

func (s *Store) ListUnreconciledTransactions(_ context.Context, companyID string) ([]domain.BankTransaction, error) {
	txns := make([]domain.BankTransaction, 0)
	s.read(func(t *tables) {
		for _, id := range t.txnOrder {
			txn := t.transactions[id]
			if txn.CompanyID == companyID && !txn.Reconciled {
				txns = append(txns, txn)
			}
		}
	})
	return txns, nil
}

func (s *Store) MarkTransactionReconciled(_ context.Context, id, by string, at time.Time) error {
	return s.write(func(t *tables) error {
		txn, ok := t.transactions[id]
		if !ok {
			return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
		}
		if txn.Reconciled {
			return fmt.Errorf("%w: transaction %s is already reconciled", domain.ErrStateConflict, id)
		}

		txn.Reconciled = true
		txn.ReconciledAt = &at
		txn.ReconciledBy = &by
		t.transactions[id] = txn
		return nil
	})
}

func (s *Store) CountTransactions(_ context.Context, companyID string) (int64, int64, error) {
	var total, unreconciled int64
	s.read(func(t *tables) {
		for _, txn := range t.transactions {
			if txn.CompanyID != companyID {
				continue
			}
			total++
			if !txn.Reconciled {
				unreconciled++
			}
		}
	})
	return total, unreconciled, nil
}
