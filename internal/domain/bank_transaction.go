package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of money flow
type TransactionType string

// Transaction types
const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// CanonicalTransaction is a statement line normalized by a bank format parser
type CanonicalTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // magnitude, always > 0
	Type        TransactionType
	Memo        string
	Document    string
	OriginName  string // counterpart name or document, when the layout has one
	ExternalID  string // native unique id, when the format supplies one
}

// SignedAmount returns the amount negated for debits
func (t CanonicalTransaction) SignedAmount() decimal.Decimal {
	if t.Type == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// BankTransaction represents a persisted bank statement line. Amount is
// signed: positive for credits, negative for debits.
type BankTransaction struct {
	ID           string
	CompanyID    string
	FITID        string
	ImportID     string
	Date         time.Time
	Amount       decimal.Decimal
	Description  string
	Type         TransactionType
	Category     *string
	Memo         string
	Document     string
	OriginName   string
	AccountID    *string
	BankID       *string
	BranchID     *string
	Reconciled   bool
	ReconciledAt *time.Time
	ReconciledBy *string
	CreatedAt    time.Time
}

// CandidateKind returns which account kind can settle this transaction:
// payables for outflows, receivables for inflows, nothing for zero.
func (t BankTransaction) CandidateKind() (AccountKind, bool) {
	switch {
	case t.Amount.IsNegative():
		return Payable, true
	case t.Amount.IsPositive():
		return Receivable, true
	}
	return "", false
}
