package domain

import "github.com/shopspring/decimal"

// Candidate is a scored pairing of a bank transaction with an open account
type Candidate struct {
	Account    Account
	Score      int
	Type       MatchType
	Reasons    []string
	AmountDiff decimal.Decimal
	DaysApart  int
}

// TransactionMatcher defines the interface for ranking candidate accounts
// for one bank transaction
type TransactionMatcher interface {
	FindCandidates(txn BankTransaction, accounts []Account) []Candidate
}

// ScoringStrategy contributes points for one signal of a pairing
type ScoringStrategy interface {
	Score(txn BankTransaction, account Account) (points int, reason string)
}
