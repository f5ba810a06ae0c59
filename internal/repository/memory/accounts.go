package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

func (s *Store) ListOpenAccounts(_ context.Context, companyID string, kind domain.AccountKind) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	s.read(func(t *tables) {
		for _, a := range t.accounts {
			if a.CompanyID == companyID && a.Kind == kind && a.IsOpen() {
				accounts = append(accounts, a)
			}
		}
	})

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

func (s *Store) GetAccount(_ context.Context, ref domain.AccountRef) (domain.Account, error) {
	var (
		account domain.Account
		ok      bool
	)
	s.read(func(t *tables) {
		account, ok = t.accounts[ref]
	})
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: account %s", domain.ErrNotFound, ref)
	}
	return account, nil
}

func (s *Store) LinkAccount(_ context.Context, ref domain.AccountRef, transactionID string, at time.Time) error {
	return s.write(func(t *tables) error {
		account, ok := t.accounts[ref]
		if !ok {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, ref)
		}
		if !account.IsOpen() {
			return fmt.Errorf("%w: account %s is already linked", domain.ErrStateConflict, ref)
		}

		account.BankTransactionID = &transactionID
		account.Reconciled = true
		account.ReconciledAt = &at
		account.Status = ref.Kind.SettledStatus()
		t.accounts[ref] = account
		return nil
	})
}
