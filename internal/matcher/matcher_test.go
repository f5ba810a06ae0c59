package matcher_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/matcher"
)

func TestScoringMatcher_ExactScenario(t *testing.T) {
	m := matcher.NewScoringMatcher()

	txn := domain.BankTransaction{
		ID:          "txn-1",
		Amount:      decimal.RequireFromString("-150.00"),
		Date:        parseDate(t, "2024-03-10"),
		Description: "Pagamento Fornecedor XYZ",
	}
	accounts := []domain.Account{
		{
			Kind:        domain.Payable,
			ID:          "pay-1",
			Description: "Fornecedor XYZ",
			Amount:      decimal.RequireFromString("150.00"),
			DueDate:     parseDate(t, "2024-03-10"),
		},
	}

	candidates := m.FindCandidates(txn, accounts)
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Score != 100 {
		t.Errorf("Expected score 100, got %d", candidates[0].Score)
	}
	if candidates[0].Type != domain.MatchExact {
		t.Errorf("Expected match type exact, got %s", candidates[0].Type)
	}
	if len(candidates[0].Reasons) != 3 {
		t.Errorf("Expected 3 reasons, got %v", candidates[0].Reasons)
	}
}

func TestScoringMatcher_LowConfidenceDiscarded(t *testing.T) {
	m := matcher.NewScoringMatcher()

	txn := domain.BankTransaction{
		Amount:      decimal.RequireFromString("-200"),
		Date:        parseDate(t, "2024-03-01"),
		Description: "Pix",
	}
	accounts := []domain.Account{
		{
			Kind:        domain.Payable,
			ID:          "pay-1",
			Description: "unrelated",
			Amount:      decimal.RequireFromString("150"),
			DueDate:     parseDate(t, "2024-03-20"),
		},
	}

	if candidates := m.FindCandidates(txn, accounts); len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
}

func TestScoringMatcher_CandidateUniverse(t *testing.T) {
	m := matcher.NewScoringMatcher()

	date := parseDate(t, "2024-03-10")
	linked := "txn-other"
	accounts := []domain.Account{
		{Kind: domain.Payable, ID: "pay-1", Description: "Aluguel", Amount: decimal.NewFromInt(100), DueDate: date},
		{Kind: domain.Receivable, ID: "rec-1", Description: "Aluguel", Amount: decimal.NewFromInt(100), DueDate: date},
		{Kind: domain.Payable, ID: "pay-linked", Description: "Aluguel", Amount: decimal.NewFromInt(100), DueDate: date, BankTransactionID: &linked},
		{Kind: domain.Payable, ID: "pay-reconciled", Description: "Aluguel", Amount: decimal.NewFromInt(100), DueDate: date, Reconciled: true},
	}

	tests := []struct {
		name     string
		amount   string
		expected []string
	}{
		{"outflow matches payables", "-100", []string{"pay-1"}},
		{"inflow matches receivables", "100", []string{"rec-1"}},
		{"zero matches nothing", "0", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := domain.BankTransaction{
				Amount:      decimal.RequireFromString(tt.amount),
				Date:        date,
				Description: "Aluguel",
			}

			candidates := m.FindCandidates(txn, accounts)
			if len(candidates) != len(tt.expected) {
				t.Fatalf("Expected %d candidates, got %d", len(tt.expected), len(candidates))
			}
			for i, id := range tt.expected {
				if candidates[i].Account.ID != id {
					t.Errorf("Expected candidate %s, got %s", id, candidates[i].Account.ID)
				}
			}
		})
	}
}

func TestScoringMatcher_RankingAndTopN(t *testing.T) {
	m := matcher.NewScoringMatcher()

	txn := domain.BankTransaction{
		Amount:      decimal.RequireFromString("-100"),
		Date:        parseDate(t, "2024-03-10"),
		Description: "Energia eletrica",
	}

	accounts := []domain.Account{
		// 20 + 30 + 30 = 80
		{Kind: domain.Payable, ID: "near", Description: "Energia eletrica", Amount: decimal.NewFromInt(105), DueDate: parseDate(t, "2024-03-10")},
		// 40 + 30 + 30 = 100
		{Kind: domain.Payable, ID: "exact", Description: "Energia eletrica", Amount: decimal.NewFromInt(100), DueDate: parseDate(t, "2024-03-10")},
		// 40 + 20 + 30 = 90
		{Kind: domain.Payable, ID: "late-b", Description: "Energia eletrica", Amount: decimal.NewFromInt(100), DueDate: parseDate(t, "2024-03-12")},
		// 40 + 20 + 30 = 90, one day nearer
		{Kind: domain.Payable, ID: "late-a", Description: "Energia eletrica", Amount: decimal.NewFromInt(100), DueDate: parseDate(t, "2024-03-11")},
	}

	candidates := m.FindCandidates(txn, accounts)
	if len(candidates) != matcher.MaxCandidates {
		t.Fatalf("Expected %d candidates, got %d", matcher.MaxCandidates, len(candidates))
	}

	expected := []struct {
		id    string
		score int
		typ   domain.MatchType
	}{
		{"exact", 100, domain.MatchExact},
		{"late-a", 90, domain.MatchExact},
		{"late-b", 90, domain.MatchExact},
	}
	for i, e := range expected {
		if candidates[i].Account.ID != e.id {
			t.Errorf("Position %d: expected %s, got %s", i, e.id, candidates[i].Account.ID)
		}
		if candidates[i].Score != e.score {
			t.Errorf("Position %d: expected score %d, got %d", i, e.score, candidates[i].Score)
		}
		if candidates[i].Type != e.typ {
			t.Errorf("Position %d: expected type %s, got %s", i, e.typ, candidates[i].Type)
		}
	}
}

func TestScoringMatcher_ClampsWithDocumentBonus(t *testing.T) {
	m := matcher.NewScoringMatcher()

	txn := domain.BankTransaction{
		Amount:      decimal.RequireFromString("-150.00"),
		Date:        parseDate(t, "2024-03-10"),
		Description: "Fornecedor XYZ",
		OriginName:  "XYZ COMERCIO 12.345.678/0001-95",
	}
	accounts := []domain.Account{
		{
			Kind:                domain.Payable,
			ID:                  "pay-1",
			Description:         "Fornecedor XYZ",
			Amount:              decimal.RequireFromString("150.00"),
			DueDate:             parseDate(t, "2024-03-10"),
			BeneficiaryDocument: "12345678000195",
		},
	}

	candidates := m.FindCandidates(txn, accounts)
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Score != 100 {
		t.Errorf("Expected score clamped to 100, got %d", candidates[0].Score)
	}
}

func TestScoringMatcher_ScoreMonotonicInAmount(t *testing.T) {
	m := matcher.NewScoringMatcher()

	txn := domain.BankTransaction{
		Amount:      decimal.RequireFromString("-1000"),
		Date:        parseDate(t, "2024-03-10"),
		Description: "Servicos contabeis",
	}

	score := func(amount decimal.Decimal) int {
		accounts := []domain.Account{{
			Kind:        domain.Payable,
			ID:          "pay-1",
			Description: "Servicos contabeis",
			Amount:      amount,
			DueDate:     parseDate(t, "2024-03-12"),
		}}
		candidates := m.FindCandidates(txn, accounts)
		if len(candidates) == 0 {
			return 0
		}
		return candidates[0].Score
	}

	previous := -1
	// account amounts walk towards the transaction magnitude
	for diff := 120; diff >= 0; diff-- {
		got := score(decimal.NewFromInt(int64(1000 + diff)))
		if got < previous {
			t.Fatalf("Score decreased from %d to %d at diff %d", previous, got, diff)
		}
		previous = got
	}
	if previous != 90 {
		t.Errorf("Expected score 90 at zero difference, got %d", previous)
	}
}

func TestScoringMatcher_NoPersistedScoreAtOrBelowDiscard(t *testing.T) {
	m := matcher.NewScoringMatcher()

	txn := domain.BankTransaction{
		Amount:      decimal.RequireFromString("-100"),
		Date:        parseDate(t, "2024-03-10"),
		Description: "Compra material",
	}

	accounts := []domain.Account{
		// 0 + 30 + 0 = 30, discarded
		{Kind: domain.Payable, ID: "thirty", Description: "Folha de pagamento", Amount: decimal.NewFromInt(500), DueDate: parseDate(t, "2024-03-10")},
		// 40 + 0 + 0 = 40, kept
		{Kind: domain.Payable, ID: "forty", Description: "Folha de pagamento", Amount: decimal.NewFromInt(100), DueDate: parseDate(t, "2024-05-10")},
	}

	candidates := m.FindCandidates(txn, accounts)
	for _, c := range candidates {
		if c.Score <= matcher.DiscardScore {
			t.Errorf("Expected no candidate at or below %d, got %s with %d", matcher.DiscardScore, c.Account.ID, c.Score)
		}
	}
	if len(candidates) != 1 || candidates[0].Account.ID != "forty" {
		t.Errorf("Expected only candidate forty, got %v", candidates)
	}
}
