package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MatchType records how a match was produced
type MatchType string

const (
	MatchManual MatchType = "manual"
	MatchExact  MatchType = "exact"
	MatchFuzzy  MatchType = "fuzzy"
	MatchAI     MatchType = "ai"
	MatchRule   MatchType = "rule"
)

// MatchStatus is the review state of a match. Rejected is terminal.
type MatchStatus string

const (
	MatchSuggested MatchStatus = "suggested"
	MatchConfirmed MatchStatus = "confirmed"
	MatchRejected  MatchStatus = "rejected"
)

// SystemActor is recorded as confirmed_by for automatic confirmations
const SystemActor = "system"

// Score thresholds for match_type classification
const (
	ExactScoreThreshold = 90
	FuzzyScoreThreshold = 70
)

// ClassifyScore maps a score to a match type, independent of confirmation
func ClassifyScore(score int) MatchType {
	switch {
	case score >= ExactScoreThreshold:
		return MatchExact
	case score >= FuzzyScoreThreshold:
		return MatchFuzzy
	default:
		return MatchRule
	}
}

// TransactionSnapshot is the transaction as seen when the match was scored
type TransactionSnapshot struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// AccountSnapshot is the account as seen when the match was scored
type AccountSnapshot struct {
	Type        AccountKind     `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
}

// MatchDetails explains a score
type MatchDetails struct {
	Reasons     []string            `json:"reasons"`
	Transaction TransactionSnapshot `json:"transaction"`
	Account     AccountSnapshot     `json:"account"`
}

// NewMatchDetails snapshots both sides of a pairing
func NewMatchDetails(txn BankTransaction, account Account, reasons []string) MatchDetails {
	return MatchDetails{
		Reasons: reasons,
		Transaction: TransactionSnapshot{
			Date:        txn.Date.Format("2006-01-02"),
			Amount:      txn.Amount,
			Description: txn.Description,
		},
		Account: AccountSnapshot{
			Type:        account.Kind,
			Description: account.Description,
			Amount:      account.Amount,
			DueDate:     account.DueDate.Format("2006-01-02"),
		},
	}
}

// Match links one bank transaction to exactly one payable or receivable
type Match struct {
	ID            string
	CompanyID     string
	TransactionID string
	PayableID     *string
	ReceivableID  *string
	Type          MatchType
	Score         int
	Details       MatchDetails
	Status        MatchStatus
	ConfirmedAt   *time.Time
	ConfirmedBy   *string
	CreatedAt     time.Time
}

// NewMatch creates a match pointing at ref, setting exactly one of
// PayableID and ReceivableID
func NewMatch(id, companyID, transactionID string, ref AccountRef) Match {
	accountID := ref.ID
	m := Match{
		ID:            id,
		CompanyID:     companyID,
		TransactionID: transactionID,
	}
	if ref.Kind == Receivable {
		m.ReceivableID = &accountID
	} else {
		m.PayableID = &accountID
	}
	return m
}

// AccountRef returns the account this match points at
func (m Match) AccountRef() AccountRef {
	if m.ReceivableID != nil {
		return AccountRef{Kind: Receivable, ID: *m.ReceivableID}
	}
	if m.PayableID != nil {
		return AccountRef{Kind: Payable, ID: *m.PayableID}
	}
	return AccountRef{}
}

// Validate checks the structural invariants of a match
func (m Match) Validate() error {
	if (m.PayableID == nil) == (m.ReceivableID == nil) {
		return fmt.Errorf("%w: match %s must reference exactly one of payable or receivable", ErrInvalidInput, m.ID)
	}
	if m.Score < 0 || m.Score > 100 {
		return fmt.Errorf("%w: match %s score %d out of range", ErrInvalidInput, m.ID, m.Score)
	}
	return nil
}
