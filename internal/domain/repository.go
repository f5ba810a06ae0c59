package domain

import (
	"context"
	"time"
)

// TransactionRepository defines the interface for accessing bank transactions
type TransactionRepository interface {
	// InsertTransactions stores txns, silently skipping any whose
	// (company_id, fitid) already exists, and returns how many were new
	InsertTransactions(ctx context.Context, txns []BankTransaction) (int, error)

	GetTransaction(ctx context.Context, id string) (BankTransaction, error)

	ListUnreconciledTransactions(ctx context.Context, companyID string) ([]BankTransaction, error)

	// MarkTransactionReconciled flips reconciled only if it is still false;
	// otherwise it returns ErrStateConflict
	MarkTransactionReconciled(ctx context.Context, id, by string, at time.Time) error

	// CountTransactions returns the total and the unreconciled count
	CountTransactions(ctx context.Context, companyID string) (total int64, unreconciled int64, err error)
}

// AccountRepository defines the interface for accessing payables and receivables
type AccountRepository interface {
	// ListOpenAccounts returns accounts of kind with no bank transaction
	// link that are not reconciled
	ListOpenAccounts(ctx context.Context, companyID string, kind AccountKind) ([]Account, error)

	GetAccount(ctx context.Context, ref AccountRef) (Account, error)

	// LinkAccount closes the account against transactionID only if it is
	// still open; otherwise it returns ErrStateConflict
	LinkAccount(ctx context.Context, ref AccountRef, transactionID string, at time.Time) error
}

// MatchFilter narrows ListMatches; zero fields are ignored
type MatchFilter struct {
	CompanyID     string
	TransactionID string
	Status        MatchStatus
}

// MatchRepository defines the interface for accessing reconciliation matches
type MatchRepository interface {
	// CreateMatches stores matches all or nothing. A scored match repeating
	// a transaction and account pairing already scored is ErrStateConflict.
	CreateMatches(ctx context.Context, matches []Match) error

	GetMatch(ctx context.Context, id string) (Match, error)

	// UpdateMatchStatus moves a match from one status to another only if it
	// is currently in from; otherwise it returns ErrStateConflict
	UpdateMatchStatus(ctx context.Context, id string, from, to MatchStatus, by *string, at time.Time) error

	// RejectSuggestedMatches rejects every suggested match, other than
	// exceptID, that belongs to transactionID or points at ref
	RejectSuggestedMatches(ctx context.Context, companyID, transactionID string, ref AccountRef, exceptID string) (int64, error)

	ListMatches(ctx context.Context, filter MatchFilter) ([]Match, error)

	CountMatchesByStatus(ctx context.Context, companyID string) (map[MatchStatus]int64, error)
}

// RuleRepository defines the interface for reading categorization rules
type RuleRepository interface {
	// ListActiveRules returns active rules ordered by priority descending
	ListActiveRules(ctx context.Context, companyID string) ([]CategorizationRule, error)
}

// ImportRepository defines the interface for recording ingestions
type ImportRepository interface {
	CreateImport(ctx context.Context, record ImportRecord) error
}

// Store groups the repositories and runs units of work atomically
type Store interface {
	Transactions() TransactionRepository
	Accounts() AccountRepository
	Matches() MatchRepository
	Rules() RuleRepository
	Imports() ImportRepository

	// WithinTx runs fn against a transactional view of the store; any
	// error from fn rolls back every write made through tx
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
