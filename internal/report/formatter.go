package report

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// ImportSummary is the ingestion part of a report
type ImportSummary struct {
	ImportID    string  `json:"import_id"`
	Format      string  `json:"format"`
	Total       int     `json:"total"`
	Imported    int     `json:"imported"`
	Ignored     int     `json:"ignored"`
	Duplicates  int     `json:"duplicates"`
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
}

// MatchLine is one recorded match
type MatchLine struct {
	MatchID       string             `json:"match_id"`
	TransactionID string             `json:"transaction_id"`
	Account       string             `json:"account"`
	Amount        decimal.Decimal    `json:"amount"`
	Description   string             `json:"description"`
	Score         int                `json:"score"`
	Type          domain.MatchType   `json:"type"`
	Status        domain.MatchStatus `json:"status"`
	Reasons       []string           `json:"reasons"`
}

// AutoMatchSummary is the matching part of a report
type AutoMatchSummary struct {
	TotalMatches  int         `json:"total_matches"`
	AutoConfirmed int         `json:"auto_confirmed"`
	Matches       []MatchLine `json:"matches"`
}

// Report is what the CLI prints after a run
type Report struct {
	Import    *ImportSummary    `json:"import,omitempty"`
	AutoMatch *AutoMatchSummary `json:"auto_match,omitempty"`
	Stats     StatsSummary      `json:"stats"`
}

// StatsSummary is the company-wide part of a report
type StatsSummary struct {
	TotalTransactions  int64   `json:"total_transactions"`
	Reconciled         int64   `json:"reconciled"`
	Orphans            int64   `json:"orphans"`
	ConfirmedMatches   int64   `json:"confirmed_matches"`
	SuggestedMatches   int64   `json:"suggested_matches"`
	RejectedMatches    int64   `json:"rejected_matches"`
	ReconciliationRate float64 `json:"reconciliation_rate"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// NewReport assembles a report. A nil import or auto match result leaves
// that section out.
func NewReport(imp *domain.ImportResult, matched *domain.AutoMatchResult, stats domain.ReconciliationStats) Report {
	r := Report{Stats: StatsSummary{
		TotalTransactions:  stats.TotalTransactions,
		Reconciled:         stats.Reconciled,
		Orphans:            stats.Orphans,
		ConfirmedMatches:   stats.ConfirmedMatches,
		SuggestedMatches:   stats.SuggestedMatches,
		RejectedMatches:    stats.RejectedMatches,
		ReconciliationRate: stats.ReconciliationRate,
	}}

	if imp != nil {
		r.Import = &ImportSummary{
			ImportID:    imp.ImportID,
			Format:      imp.Format,
			Total:       imp.Total,
			Imported:    imp.Imported,
			Ignored:     imp.Ignored,
			Duplicates:  imp.Duplicates,
			PeriodStart: formatDate(imp.Period.Start),
			PeriodEnd:   formatDate(imp.Period.End),
		}
	}

	if matched != nil {
		summary := &AutoMatchSummary{
			TotalMatches:  matched.TotalMatches,
			AutoConfirmed: matched.AutoConfirmed,
			Matches:       make([]MatchLine, 0, len(matched.Matches)),
		}
		for _, m := range matched.Matches {
			summary.Matches = append(summary.Matches, MatchLine{
				MatchID:       m.ID,
				TransactionID: m.TransactionID,
				Account:       m.AccountRef().String(),
				Amount:        m.Details.Transaction.Amount,
				Description:   m.Details.Transaction.Description,
				Score:         m.Score,
				Type:          m.Type,
				Status:        m.Status,
				Reasons:       m.Details.Reasons,
			})
		}
		r.AutoMatch = summary
	}

	return r
}

// OutputFormatter defines the interface for formatting reconciliation reports
type OutputFormatter interface {
	Format(report Report) ([]byte, error)
	FileExtension() string
}

// JSONFormatter formats reconciliation reports as JSON
type JSONFormatter struct {
	PrettyPrint bool
}

func NewJSONFormatter(prettyPrint bool) *JSONFormatter {
	return &JSONFormatter{
		PrettyPrint: prettyPrint,
	}
}

// Format implements the OutputFormatter interface for JSON
func (f *JSONFormatter) Format(report Report) ([]byte, error) {
	if f.PrettyPrint {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}

func (f *JSONFormatter) FileExtension() string {
	return "json"
}
