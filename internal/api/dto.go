package api

import (
	"time"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

const dateLayout = "2006-01-02"

type importRequest struct {
	FileBase64 string `json:"fileBase64"`
	FileName   string `json:"fileName"`
	CompanyID  string `json:"companyId"`
}

type periodResponse struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type importResponse struct {
	ImportID   string         `json:"importId"`
	Total      int            `json:"total"`
	Imported   int            `json:"imported"`
	Ignored    int            `json:"ignored"`
	Duplicates int            `json:"duplicates"`
	Format     string         `json:"format"`
	Period     periodResponse `json:"period"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func newImportResponse(r domain.ImportResult) importResponse {
	return importResponse{
		ImportID:   r.ImportID,
		Total:      r.Total,
		Imported:   r.Imported,
		Ignored:    r.Ignored,
		Duplicates: r.Duplicates,
		Format:     r.Format,
		Period: periodResponse{
			Start: formatDate(r.Period.Start),
			End:   formatDate(r.Period.End),
		},
	}
}

type runMatchingRequest struct {
	CompanyID            string `json:"company_id"`
	TransactionID        string `json:"transaction_id"`
	AutoConfirmThreshold int    `json:"auto_confirm_threshold"`
}

type companyRequest struct {
	CompanyID string `json:"company_id"`
}

type manualMatchRequest struct {
	CompanyID     string `json:"company_id"`
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id"`
	AccountType   string `json:"account_type"`
}

type linkItem struct {
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id"`
	AccountType   string `json:"account_type"`
}

type linksRequest struct {
	CompanyID string     `json:"company_id"`
	Links     []linkItem `json:"links"`
}

type linkResultResponse struct {
	TransactionID string  `json:"transaction_id"`
	AccountID     string  `json:"account_id"`
	MatchID       *string `json:"match_id,omitempty"`
	Error         *string `json:"error,omitempty"`
}

type matchResponse struct {
	ID                string              `json:"id"`
	CompanyID         string              `json:"company_id"`
	BankTransactionID string              `json:"bank_transaction_id"`
	ContaPagarID      *string             `json:"conta_pagar_id"`
	ContaReceberID    *string             `json:"conta_receber_id"`
	MatchType         domain.MatchType    `json:"match_type"`
	MatchScore        int                 `json:"match_score"`
	MatchDetails      domain.MatchDetails `json:"match_details"`
	Status            domain.MatchStatus  `json:"status"`
	ConfirmedAt       *time.Time          `json:"confirmed_at"`
	ConfirmedBy       *string             `json:"confirmed_by"`
	CreatedAt         time.Time           `json:"created_at"`
}

func newMatchResponse(m domain.Match) matchResponse {
	return matchResponse{
		ID:                m.ID,
		CompanyID:         m.CompanyID,
		BankTransactionID: m.TransactionID,
		ContaPagarID:      m.PayableID,
		ContaReceberID:    m.ReceivableID,
		MatchType:         m.Type,
		MatchScore:        m.Score,
		MatchDetails:      m.Details,
		Status:            m.Status,
		ConfirmedAt:       m.ConfirmedAt,
		ConfirmedBy:       m.ConfirmedBy,
		CreatedAt:         m.CreatedAt,
	}
}

func newMatchResponses(matches []domain.Match) []matchResponse {
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, newMatchResponse(m))
	}
	return out
}

type runMatchingResponse struct {
	Success       bool            `json:"success"`
	TotalMatches  int             `json:"total_matches"`
	AutoConfirmed int             `json:"auto_confirmed"`
	Matches       []matchResponse `json:"matches"`
}

type statsResponse struct {
	TotalTransactions  int64   `json:"total_transactions"`
	Reconciled         int64   `json:"reconciled"`
	Orphans            int64   `json:"orphans"`
	ConfirmedMatches   int64   `json:"confirmed_matches"`
	SuggestedMatches   int64   `json:"suggested_matches"`
	RejectedMatches    int64   `json:"rejected_matches"`
	ReconciliationRate float64 `json:"reconciliation_rate"`
}

func newStatsResponse(s domain.ReconciliationStats) statsResponse {
	return statsResponse{
		TotalTransactions:  s.TotalTransactions,
		Reconciled:         s.Reconciled,
		Orphans:            s.Orphans,
		ConfirmedMatches:   s.ConfirmedMatches,
		SuggestedMatches:   s.SuggestedMatches,
		RejectedMatches:    s.RejectedMatches,
		ReconciliationRate: s.ReconciliationRate,
	}
}
