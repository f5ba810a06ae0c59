package matcher

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/locale"
)

var (
	amountExactTolerance = decimal.RequireFromString("0.01")
	amountNearTolerance  = decimal.NewFromInt(10)
	amountFarTolerance   = decimal.NewFromInt(50)

	// CNPJ first, so a CNPJ is never read as a CPF prefix
	taxIDPattern = regexp.MustCompile(`\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}|\d{3}\.?\d{3}\.?\d{3}-?\d{2}`)

	distanceOptions = levenshtein.Options{
		InsCost: 1,
		DelCost: 1,
		SubCost: 1,
		Matches: levenshtein.IdenticalRunes,
	}
)

// minContainedLength is the shortest folded description that counts as
// contained in the other side
const minContainedLength = 4

// AmountProximityStrategy scores how close the transaction magnitude is to
// the account amount
type AmountProximityStrategy struct{}

// NewAmountProximityStrategy creates a new AmountProximityStrategy
func NewAmountProximityStrategy() *AmountProximityStrategy {
	return &AmountProximityStrategy{}
}

// Score implements the domain.ScoringStrategy interface
func (s *AmountProximityStrategy) Score(txn domain.BankTransaction, account domain.Account) (int, string) {
	diff := amountDiff(txn, account)

	switch {
	case diff.LessThan(amountExactTolerance):
		return 40, "exact amount"
	case diff.LessThan(amountNearTolerance):
		return 20, fmt.Sprintf("amount within %s", diff.StringFixed(2))
	case diff.LessThan(amountFarTolerance):
		return 10, fmt.Sprintf("amount within %s", diff.StringFixed(2))
	}
	return 0, ""
}

// DueDateProximityStrategy scores how close the transaction date is to the
// account due date
type DueDateProximityStrategy struct{}

// NewDueDateProximityStrategy creates a new DueDateProximityStrategy
func NewDueDateProximityStrategy() *DueDateProximityStrategy {
	return &DueDateProximityStrategy{}
}

// Score implements the domain.ScoringStrategy interface
func (s *DueDateProximityStrategy) Score(txn domain.BankTransaction, account domain.Account) (int, string) {
	days := daysApart(txn.Date, account.DueDate)

	switch {
	case days == 0:
		return 30, "same date as due date"
	case days <= 3:
		return 20, fmt.Sprintf("%d days from due date", days)
	case days <= 7:
		return 10, fmt.Sprintf("%d days from due date", days)
	}
	return 0, ""
}

// DescriptionSimilarityStrategy scores the normalized edit distance between
// the transaction and account descriptions
type DescriptionSimilarityStrategy struct{}

// NewDescriptionSimilarityStrategy creates a new DescriptionSimilarityStrategy
func NewDescriptionSimilarityStrategy() *DescriptionSimilarityStrategy {
	return &DescriptionSimilarityStrategy{}
}

// Score implements the domain.ScoringStrategy interface
func (s *DescriptionSimilarityStrategy) Score(txn domain.BankTransaction, account domain.Account) (int, string) {
	sim := Similarity(txn.Description, account.Description)

	switch {
	case sim > 0.8:
		return 30, fmt.Sprintf("description similarity %.2f", sim)
	case sim > 0.6:
		return 20, fmt.Sprintf("description similarity %.2f", sim)
	case sim > 0.4:
		return 10, fmt.Sprintf("description similarity %.2f", sim)
	}
	return 0, ""
}

// DocumentBonusStrategy adds points when a CPF/CNPJ found in the
// transaction equals the account beneficiary document
type DocumentBonusStrategy struct {
	Points int
}

// NewDocumentBonusStrategy creates a new DocumentBonusStrategy
func NewDocumentBonusStrategy(points int) *DocumentBonusStrategy {
	return &DocumentBonusStrategy{Points: points}
}

// Score implements the domain.ScoringStrategy interface
func (s *DocumentBonusStrategy) Score(txn domain.BankTransaction, account domain.Account) (int, string) {
	want := locale.Digits(account.BeneficiaryDocument)
	if want == "" {
		return 0, ""
	}

	source := txn.OriginName
	if !taxIDPattern.MatchString(source) {
		source = txn.Description
	}

	for _, found := range taxIDPattern.FindAllString(source, -1) {
		if locale.Digits(found) == want {
			return s.Points, "beneficiary document matches"
		}
	}
	return 0, ""
}

// Similarity returns a value in [0,1] comparing two descriptions after case
// and accent folding. A side of at least four characters contained in the
// other scores 0.9; otherwise it is 1 - distance/max(len).
func Similarity(a, b string) float64 {
	a, b = locale.Fold(a), locale.Fold(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	shorter, longer := a, b
	if utf8.RuneCountInString(shorter) > utf8.RuneCountInString(longer) {
		shorter, longer = longer, shorter
	}
	if utf8.RuneCountInString(shorter) >= minContainedLength && strings.Contains(longer, shorter) {
		return 0.9
	}

	ra, rb := []rune(a), []rune(b)
	distance := levenshtein.DistanceForStrings(ra, rb, distanceOptions)
	maxLen := max(len(ra), len(rb))

	return 1 - float64(distance)/float64(maxLen)
}

// amountDiff compares the transaction magnitude with the account amount
func amountDiff(txn domain.BankTransaction, account domain.Account) decimal.Decimal {
	return txn.Amount.Abs().Sub(account.Amount.Abs()).Abs()
}

// daysApart counts whole calendar days between two dates
func daysApart(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
