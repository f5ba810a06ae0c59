package report_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/report"
)

func TestNewReport(t *testing.T) {
	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)

	m := domain.NewMatch("m1", "acme", "t1", domain.AccountRef{Kind: domain.Payable, ID: "p1"})
	m.Score = 100
	m.Type = domain.MatchExact
	m.Status = domain.MatchConfirmed
	m.Details = domain.MatchDetails{
		Reasons:     []string{"exact amount"},
		Transaction: domain.TransactionSnapshot{Amount: decimal.RequireFromString("-150"), Description: "PAGAMENTO"},
	}

	r := report.NewReport(
		&domain.ImportResult{ImportID: "imp-1", Format: "itau", Total: 4, Imported: 3, Ignored: 1, Period: domain.Period{Start: &start, End: &end}},
		&domain.AutoMatchResult{TotalMatches: 1, AutoConfirmed: 1, Matches: []domain.Match{m}},
		domain.ReconciliationStats{TotalTransactions: 3, Reconciled: 1, Orphans: 2, ConfirmedMatches: 1, ReconciliationRate: 100.0 / 3},
	)

	if r.Import == nil || *r.Import.PeriodStart != "2024-03-05" || *r.Import.PeriodEnd != "2024-03-08" {
		t.Errorf("Unexpected import summary: %+v", r.Import)
	}
	if r.AutoMatch == nil || len(r.AutoMatch.Matches) != 1 {
		t.Fatalf("Expected one match line, got %+v", r.AutoMatch)
	}
	if line := r.AutoMatch.Matches[0]; line.Account != "payable:p1" || line.Description != "PAGAMENTO" {
		t.Errorf("Unexpected match line: %+v", line)
	}
	if r.Stats.Orphans != 2 {
		t.Errorf("Expected 2 orphans, got %d", r.Stats.Orphans)
	}
}

func TestNewReport_StatsOnly(t *testing.T) {
	r := report.NewReport(nil, nil, domain.ReconciliationStats{})

	out, err := report.NewJSONFormatter(false).Format(r)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := decoded["import"]; ok {
		t.Errorf("Expected import to be omitted, got %s", out)
	}
	if _, ok := decoded["stats"]; !ok {
		t.Errorf("Expected stats, got %s", out)
	}
}

func TestJSONFormatter(t *testing.T) {
	r := report.NewReport(nil, nil, domain.ReconciliationStats{TotalTransactions: 2})

	pretty, _ := report.NewJSONFormatter(true).Format(r)
	compact, _ := report.NewJSONFormatter(false).Format(r)

	if !strings.Contains(string(pretty), "\n  ") {
		t.Errorf("Expected indented output, got %s", pretty)
	}
	if strings.Contains(string(compact), "\n") {
		t.Errorf("Expected compact output, got %s", compact)
	}
	if !strings.Contains(string(compact), `"total_transactions":2`) {
		t.Errorf("Expected snake case stats, got %s", compact)
	}
	if ext := report.NewJSONFormatter(false).FileExtension(); ext != "json" {
		t.Errorf("Expected json, got %s", ext)
	}
}
