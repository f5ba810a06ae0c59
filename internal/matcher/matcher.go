package matcher

import (
	"sort"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

const (
	// DiscardScore is the highest score that is never kept
	DiscardScore = 30

	// MaxCandidates is how many candidates are kept per transaction
	MaxCandidates = 3

	defaultDocumentBonus = 10
	maxScore             = 100
)

// ScoringMatcher implements the domain.TransactionMatcher interface by
// summing the points of every strategy
type ScoringMatcher struct {
	strategies []domain.ScoringStrategy
}

// NewScoringMatcher creates a new ScoringMatcher with the given strategies
func NewScoringMatcher(strategies ...domain.ScoringStrategy) *ScoringMatcher {
	if len(strategies) == 0 {

		// Default strategies
		strategies = []domain.ScoringStrategy{
			NewAmountProximityStrategy(),
			NewDueDateProximityStrategy(),
			NewDescriptionSimilarityStrategy(),
			NewDocumentBonusStrategy(defaultDocumentBonus),
		}
	}

	return &ScoringMatcher{
		strategies: strategies,
	}
}

// FindCandidates scores every open account of the kind the transaction can
// settle and returns at most MaxCandidates above DiscardScore, best first
func (m *ScoringMatcher) FindCandidates(txn domain.BankTransaction, accounts []domain.Account) []domain.Candidate {
	kind, ok := txn.CandidateKind()
	if !ok {
		return nil
	}

	candidates := make([]domain.Candidate, 0)

	for _, account := range accounts {
		if account.Kind != kind || !account.IsOpen() {
			continue
		}

		score := 0
		reasons := make([]string, 0, len(m.strategies))
		for _, strategy := range m.strategies {
			points, reason := strategy.Score(txn, account)
			if points == 0 {
				continue
			}
			score += points
			reasons = append(reasons, reason)
		}

		score = min(max(score, 0), maxScore)
		if score <= DiscardScore {
			continue
		}

		candidates = append(candidates, domain.Candidate{
			Account:    account,
			Score:      score,
			Type:       domain.ClassifyScore(score),
			Reasons:    reasons,
			AmountDiff: amountDiff(txn, account),
			DaysApart:  daysApart(txn.Date, account.DueDate),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.AmountDiff.Equal(b.AmountDiff) {
			return a.AmountDiff.LessThan(b.AmountDiff)
		}
		if a.DaysApart != b.DaysApart {
			return a.DaysApart < b.DaysApart
		}
		return a.Account.ID < b.Account.ID
	})

	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}

	return candidates
}
