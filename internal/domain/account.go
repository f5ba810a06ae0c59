package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind discriminates payable from receivable accounts
type AccountKind string

const (
	Payable    AccountKind = "payable"
	Receivable AccountKind = "receivable"
)

// Account statuses written when an account is settled by a bank transaction
const (
	AccountStatusPending  = "pendente"
	AccountStatusPaid     = "pago"
	AccountStatusReceived = "recebido"
)

// ParseAccountKind accepts the English kind names and the Portuguese table
// names used by the CRUD layer
func ParseAccountKind(s string) (AccountKind, error) {
	switch s {
	case "payable", "contas_pagar", "pagar":
		return Payable, nil
	case "receivable", "contas_receber", "receber":
		return Receivable, nil
	}
	return "", fmt.Errorf("%w: unknown account type %q", ErrInvalidInput, s)
}

// SettledStatus is the status an account of this kind takes when linked
func (k AccountKind) SettledStatus() string {
	if k == Receivable {
		return AccountStatusReceived
	}
	return AccountStatusPaid
}

// AccountRef identifies one payable or receivable
type AccountRef struct {
	Kind AccountKind
	ID   string
}

func (r AccountRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Account is a payable (contas_pagar) or receivable (contas_receber) entry.
// Amount holds valor or valor_total and DueDate holds vencimento or
// data_vencimento, depending on Kind.
type Account struct {
	Kind                AccountKind
	ID                  string
	CompanyID           string
	Description         string
	Amount              decimal.Decimal
	DueDate             time.Time
	Status              string
	BeneficiaryDocument string
	BankTransactionID   *string
	Reconciled          bool
	ReconciledAt        *time.Time
}

// Ref returns the account's reference
func (a Account) Ref() AccountRef {
	return AccountRef{Kind: a.Kind, ID: a.ID}
}

// IsOpen reports whether the account can still be matched
func (a Account) IsOpen() bool {
	return a.BankTransactionID == nil && !a.Reconciled
}
