package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/repository/memory"
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func txn(id, company, fitid, amount string) domain.BankTransaction {
	return domain.BankTransaction{
		ID:          id,
		CompanyID:   company,
		FITID:       fitid,
		Date:        time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString(amount),
		Description: "PIX " + id,
	}
}

func TestInsertTransactions_SkipsExistingFITID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	n, err := store.InsertTransactions(ctx, []domain.BankTransaction{
		txn("t1", "acme", "f1", "-10"),
		txn("t2", "acme", "f2", "20"),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 inserted, got %d", n)
	}

	n, err = store.InsertTransactions(ctx, []domain.BankTransaction{
		txn("t3", "acme", "f1", "-10"),
		// same fitid under another tenant is a different transaction
		txn("t4", "other", "f1", "-10"),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 inserted, got %d", n)
	}

	total, unreconciled, _ := store.CountTransactions(ctx, "acme")
	if total != 2 || unreconciled != 2 {
		t.Errorf("Expected 2 total and 2 unreconciled, got %d and %d", total, unreconciled)
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Transactions().InsertTransactions(ctx, []domain.BankTransaction{txn("t1", "acme", "f1", "-10")}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	if _, err := store.GetTransaction(ctx, "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after rollback, got %v", err)
	}
}

func TestWithinTx_Commits(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	err := store.WithinTx(ctx, func(tx domain.Store) error {
		_, err := tx.Transactions().InsertTransactions(ctx, []domain.BankTransaction{txn("t1", "acme", "f1", "-10")})
		return err
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := store.GetTransaction(ctx, "t1"); err != nil {
		t.Errorf("Expected committed transaction, got %v", err)
	}
}

func TestMarkTransactionReconciled(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	_, _ = store.InsertTransactions(ctx, []domain.BankTransaction{txn("t1", "acme", "f1", "-10")})

	if err := store.MarkTransactionReconciled(ctx, "t1", "user-1", now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := store.MarkTransactionReconciled(ctx, "t1", "user-2", now); !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict, got %v", err)
	}
	if err := store.MarkTransactionReconciled(ctx, "missing", "user-1", now); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	got, _ := store.GetTransaction(ctx, "t1")
	if got.ReconciledBy == nil || *got.ReconciledBy != "user-1" {
		t.Errorf("Expected reconciled by user-1, got %v", got.ReconciledBy)
	}

	open, _ := store.ListUnreconciledTransactions(ctx, "acme")
	if len(open) != 0 {
		t.Errorf("Expected no unreconciled transactions, got %d", len(open))
	}
}

func TestLinkAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddAccounts(
		domain.Account{Kind: domain.Payable, ID: "p1", CompanyID: "acme", Amount: decimal.NewFromInt(10), Status: domain.AccountStatusPending},
		domain.Account{Kind: domain.Receivable, ID: "r1", CompanyID: "acme", Amount: decimal.NewFromInt(10), Status: domain.AccountStatusPending},
	)
	ref := domain.AccountRef{Kind: domain.Payable, ID: "p1"}

	if err := store.LinkAccount(ctx, ref, "t1", now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := store.LinkAccount(ctx, ref, "t2", now); !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict, got %v", err)
	}

	account, _ := store.GetAccount(ctx, ref)
	if !account.Reconciled || account.Status != domain.AccountStatusPaid {
		t.Errorf("Expected reconciled and pago, got %v and %s", account.Reconciled, account.Status)
	}
	if account.BankTransactionID == nil || *account.BankTransactionID != "t1" {
		t.Errorf("Expected link to t1, got %v", account.BankTransactionID)
	}

	open, _ := store.ListOpenAccounts(ctx, "acme", domain.Payable)
	if len(open) != 0 {
		t.Errorf("Expected no open payables, got %d", len(open))
	}
	open, _ = store.ListOpenAccounts(ctx, "acme", domain.Receivable)
	if len(open) != 1 {
		t.Errorf("Expected 1 open receivable, got %d", len(open))
	}
}

func newMatch(id, txnID string, ref domain.AccountRef, status domain.MatchStatus) domain.Match {
	m := domain.NewMatch(id, "acme", txnID, ref)
	m.Type = domain.MatchFuzzy
	m.Score = 75
	m.Status = status
	return m
}

func TestMatchStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ref := domain.AccountRef{Kind: domain.Payable, ID: "p1"}

	if err := store.CreateMatches(ctx, []domain.Match{newMatch("m1", "t1", ref, domain.MatchSuggested)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	user := "user-1"
	if err := store.UpdateMatchStatus(ctx, "m1", domain.MatchSuggested, domain.MatchConfirmed, &user, now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	err := store.UpdateMatchStatus(ctx, "m1", domain.MatchSuggested, domain.MatchConfirmed, &user, now)
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict on second confirm, got %v", err)
	}

	m, _ := store.GetMatch(ctx, "m1")
	if m.ConfirmedBy == nil || *m.ConfirmedBy != user {
		t.Errorf("Expected confirmed by %s, got %v", user, m.ConfirmedBy)
	}
}

func TestCreateMatches_RejectsInvalid(t *testing.T) {
	store := memory.NewStore()

	bad := newMatch("m1", "t1", domain.AccountRef{Kind: domain.Payable, ID: "p1"}, domain.MatchSuggested)
	receivable := "r1"
	bad.ReceivableID = &receivable

	err := store.CreateMatches(context.Background(), []domain.Match{bad})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateMatches_PairingSuggestedOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ref := domain.AccountRef{Kind: domain.Payable, ID: "p1"}

	if err := store.CreateMatches(ctx, []domain.Match{newMatch("m1", "t1", ref, domain.MatchRejected)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err := store.CreateMatches(ctx, []domain.Match{
		newMatch("m2", "t2", ref, domain.MatchSuggested),
		newMatch("m3", "t1", ref, domain.MatchSuggested),
	})
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict for a repeated pairing, got %v", err)
	}
	if _, err := store.GetMatch(ctx, "m2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected the batch to be refused whole, got %v", err)
	}

	manual := newMatch("m4", "t1", ref, domain.MatchConfirmed)
	manual.Type = domain.MatchManual
	manual.Score = 100
	if err := store.CreateMatches(ctx, []domain.Match{manual}); err != nil {
		t.Errorf("Expected a manual match over a rejected pairing, got %v", err)
	}
}

func TestRejectSuggestedMatches(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	p1 := domain.AccountRef{Kind: domain.Payable, ID: "p1"}
	p2 := domain.AccountRef{Kind: domain.Payable, ID: "p2"}
	p3 := domain.AccountRef{Kind: domain.Payable, ID: "p3"}
	err := store.CreateMatches(ctx, []domain.Match{
		newMatch("keep", "t1", p1, domain.MatchSuggested),
		newMatch("same-txn", "t1", p2, domain.MatchSuggested),
		newMatch("same-account", "t2", p1, domain.MatchSuggested),
		newMatch("unrelated", "t3", p2, domain.MatchSuggested),
		newMatch("already-rejected", "t1", p3, domain.MatchRejected),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	n, err := store.RejectSuggestedMatches(ctx, "acme", "t1", p1, "keep")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rejected, got %d", n)
	}

	expected := map[string]domain.MatchStatus{
		"keep":             domain.MatchSuggested,
		"same-txn":         domain.MatchRejected,
		"same-account":     domain.MatchRejected,
		"unrelated":        domain.MatchSuggested,
		"already-rejected": domain.MatchRejected,
	}
	for id, status := range expected {
		m, _ := store.GetMatch(ctx, id)
		if m.Status != status {
			t.Errorf("Match %s: expected %s, got %s", id, status, m.Status)
		}
	}

	counts, _ := store.CountMatchesByStatus(ctx, "acme")
	if counts[domain.MatchRejected] != 3 || counts[domain.MatchSuggested] != 2 {
		t.Errorf("Unexpected counts: %v", counts)
	}

	suggested, _ := store.ListMatches(ctx, domain.MatchFilter{CompanyID: "acme", Status: domain.MatchSuggested})
	if len(suggested) != 2 || suggested[0].ID != "keep" {
		t.Errorf("Expected keep and unrelated, got %v", suggested)
	}
}

func TestListActiveRules(t *testing.T) {
	store := memory.NewStore()
	store.AddRules(
		domain.CategorizationRule{ID: "low", CompanyID: "acme", Pattern: "pix", Category: "transfer", Priority: 1, Active: true},
		domain.CategorizationRule{ID: "off", CompanyID: "acme", Pattern: "pix", Category: "x", Priority: 9, Active: false},
		domain.CategorizationRule{ID: "high", CompanyID: "acme", Pattern: "tarifa", Category: "fees", Priority: 5, Active: true},
		domain.CategorizationRule{ID: "other", CompanyID: "other", Pattern: "pix", Category: "y", Priority: 5, Active: true},
	)

	rules, err := store.ListActiveRules(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rules) != 2 || rules[0].ID != "high" || rules[1].ID != "low" {
		t.Errorf("Expected [high low], got %v", rules)
	}
}

func TestLoadAccountsCSV(t *testing.T) {
	input := strings.Join([]string{
		"kind,id,descricao,valor,vencimento,documento",
		"payable,p1,Fornecedor XYZ,\"1.500,00\",10/03/2024,12.345.678/0001-95",
		"contas_receber,r1,Cliente ABC,200.50,2024-03-15,",
	}, "\n")

	accounts, err := memory.LoadAccountsCSV(strings.NewReader(input), "acme")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}

	p := accounts[0]
	if p.Kind != domain.Payable || p.ID != "p1" || p.CompanyID != "acme" {
		t.Errorf("Unexpected payable: %+v", p)
	}
	if !p.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected 1500, got %s", p.Amount)
	}
	if p.BeneficiaryDocument != "12345678000195" {
		t.Errorf("Expected document digits, got %s", p.BeneficiaryDocument)
	}
	if !p.DueDate.Equal(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected due date 2024-03-10, got %v", p.DueDate)
	}

	r := accounts[1]
	if r.Kind != domain.Receivable || !r.Amount.Equal(decimal.RequireFromString("200.50")) {
		t.Errorf("Unexpected receivable: %+v", r)
	}
}

func TestLoadAccountsCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing column", "kind,id,descricao,valor\npayable,p1,x,10"},
		{"bad kind", "kind,id,descricao,valor,vencimento\nloan,p1,x,10,10/03/2024"},
		{"bad amount", "kind,id,descricao,valor,vencimento\npayable,p1,x,abc,10/03/2024"},
		{"bad date", "kind,id,descricao,valor,vencimento\npayable,p1,x,10,someday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := memory.LoadAccountsCSV(strings.NewReader(tt.input), "acme"); err == nil {
				t.Errorf("Expected error, got nil")
			}
		})
	}
}
