package repository

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// dryRunDB renders SQL without a server
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "recon:secret@tcp(127.0.0.1:3306)/recon?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("Failed to open dry run db: %v", err)
	}
	return db
}

func assertContains(t *testing.T, sql string, parts ...string) {
	t.Helper()

	for _, p := range parts {
		if !strings.Contains(sql, p) {
			t.Errorf("Expected SQL to contain %q, got %s", p, sql)
		}
	}
}

func TestRejectSiblings(t *testing.T) {
	db := dryRunDB(t)

	tests := []struct {
		name     string
		ref      domain.AccountRef
		contains []string
	}{
		{
			name:     "payable",
			ref:      domain.AccountRef{Kind: domain.Payable, ID: "p1"},
			contains: []string{"conta_pagar_id = 'p1'"},
		},
		{
			name:     "receivable",
			ref:      domain.AccountRef{Kind: domain.Receivable, ID: "r1"},
			contains: []string{"conta_receber_id = 'r1'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				return rejectSiblings(tx, "acme", "t1", tt.ref, "m1")
			})

			assertContains(t, sql, append(tt.contains,
				"UPDATE `reconciliation_matches`",
				"`status`='rejected'",
				"company_id = 'acme'",
				"id <> 'm1'",
				"bank_transaction_id = 't1'",
			)...)
		})
	}
}

func TestLinkAccount(t *testing.T) {
	db := dryRunDB(t)
	at := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		ref    domain.AccountRef
		table  string
		status string
	}{
		{"payable", domain.AccountRef{Kind: domain.Payable, ID: "p1"}, "`contas_pagar`", "'pago'"},
		{"receivable", domain.AccountRef{Kind: domain.Receivable, ID: "r1"}, "`contas_receber`", "'recebido'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := accountModel(tt.ref.Kind)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				return linkAccount(tx, model, tt.ref, "t1", at)
			})

			assertContains(t, sql,
				"UPDATE "+tt.table,
				"`status`="+tt.status,
				"`bank_transaction_id`='t1'",
				"bank_transaction_id IS NULL",
			)
		})
	}
}

func TestAccountModel_UnknownKind(t *testing.T) {
	if _, err := accountModel("loan"); err == nil {
		t.Errorf("Expected error for unknown kind")
	}
}

func TestExpandRules(t *testing.T) {
	rows := []categorizationRuleModel{
		{
			ID:         "r1",
			CompanyID:  "acme",
			RuleName:   "Tarifas",
			Conditions: ruleConditions{MessageContains: []string{"tarifa", "pacote servicos"}},
			Actions:    ruleActions{Category: "tarifas"},
			Priority:   1,
			Active:     true,
		},
		{
			ID:         "r2",
			CompanyID:  "acme",
			RuleName:   "Energia",
			Conditions: ruleConditions{MessageContains: []string{"cemig"}},
			Actions:    ruleActions{Category: "energia"},
			Priority:   5,
			Active:     true,
		},
		{
			ID:       "r3",
			RuleName: "Sem condicoes",
			Actions:  ruleActions{Category: "outros"},
			Priority: 9,
		},
	}

	rules := expandRules(rows)

	expected := []struct {
		pattern  string
		category string
	}{
		{"cemig", "energia"},
		{"tarifa", "tarifas"},
		{"pacote servicos", "tarifas"},
	}

	if len(rules) != len(expected) {
		t.Fatalf("Expected %d rules, got %d", len(expected), len(rules))
	}
	for i, e := range expected {
		if rules[i].Pattern != e.pattern || rules[i].Category != e.category {
			t.Errorf("Rule %d: expected %s -> %s, got %s -> %s", i, e.pattern, e.category, rules[i].Pattern, rules[i].Category)
		}
	}
	if rules[1].Name != "Tarifas" || rules[1].CompanyID != "acme" {
		t.Errorf("Expected rule metadata to be carried, got %+v", rules[1])
	}
}

func TestMatchModel_KeepsAccountReference(t *testing.T) {
	for _, ref := range []domain.AccountRef{
		{Kind: domain.Payable, ID: "p1"},
		{Kind: domain.Receivable, ID: "r1"},
	} {
		m := domain.NewMatch("m1", "acme", "t1", ref)
		got := newMatchModel(m).toDomain().AccountRef()
		if got != ref {
			t.Errorf("Expected %s, got %s", ref, got)
		}
	}
}

func TestMatchModel_SuggestionKey(t *testing.T) {
	ref := domain.AccountRef{Kind: domain.Payable, ID: "p1"}

	scored := domain.NewMatch("m1", "acme", "t1", ref)
	scored.Type = domain.MatchFuzzy
	if key := newMatchModel(scored).SuggestionKey; key == nil || *key != "t1|"+ref.String() {
		t.Errorf("Expected suggestion key for a scored match, got %v", key)
	}

	manual := domain.NewMatch("m2", "acme", "t1", ref)
	manual.Type = domain.MatchManual
	if key := newMatchModel(manual).SuggestionKey; key != nil {
		t.Errorf("Expected no suggestion key for a manual match, got %s", *key)
	}
}

func TestBankTransactionModel_FitsColumns(t *testing.T) {
	category := strings.Repeat("c", 200)
	txn := domain.BankTransaction{
		ID:          "t1",
		CompanyID:   "acme",
		Description: strings.Repeat("ção", 300),
		Memo:        strings.Repeat("m", 600),
		Document:    strings.Repeat("9", 80),
		OriginName:  strings.Repeat("José ", 60),
		Category:    &category,
	}

	m := newBankTransactionModel(txn)

	tests := []struct {
		name  string
		value string
		width int
	}{
		{"description", m.Description, descriptionWidth},
		{"memo", m.Memo, descriptionWidth},
		{"document", m.Document, documentWidth},
		{"origin", m.OriginName, originWidth},
		{"category", *m.Category, categoryWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n := utf8.RuneCountInString(tt.value); n != tt.width {
				t.Errorf("Expected %d runes, got %d", tt.width, n)
			}
			if !utf8.ValidString(tt.value) {
				t.Errorf("Expected valid UTF-8 after truncation")
			}
		})
	}

	if short := newBankTransactionModel(domain.BankTransaction{Description: "PIX"}); short.Description != "PIX" {
		t.Errorf("Expected short values untouched, got %s", short.Description)
	}
}
