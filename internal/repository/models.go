package repository

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// column widths; longer values are cut to fit
const (
	descriptionWidth = 500
	documentWidth    = 64
	originWidth      = 255
	categoryWidth    = 128
	refWidth         = 64
	accountDocWidth  = 32
	fileNameWidth    = 255
)

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func truncatePtr(s *string, n int) *string {
	if s == nil {
		return nil
	}
	v := truncate(*s, n)
	return &v
}

type bankTransactionModel struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)"`
	CompanyID    string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_bank_transactions_company_fitid,priority:1;index:idx_bank_transactions_company_reconciled,priority:1"`
	FITID        string          `gorm:"column:fitid;type:varchar(64);not null;uniqueIndex:uq_bank_transactions_company_fitid,priority:2"`
	ImportID     string          `gorm:"type:varchar(36);index"`
	Date         time.Time       `gorm:"type:date;not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description  string          `gorm:"type:varchar(500);not null"`
	Type         string          `gorm:"type:varchar(8);not null"`
	Category     *string         `gorm:"type:varchar(128)"`
	Memo         string          `gorm:"type:varchar(500)"`
	Document     string          `gorm:"type:varchar(64)"`
	OriginName   string          `gorm:"type:varchar(255)"`
	AccountID    *string         `gorm:"type:varchar(64)"`
	BankID       *string         `gorm:"type:varchar(64)"`
	BranchID     *string         `gorm:"type:varchar(64)"`
	Reconciled   bool            `gorm:"not null;default:false;index:idx_bank_transactions_company_reconciled,priority:2"`
	ReconciledAt *time.Time
	ReconciledBy *string `gorm:"type:varchar(64)"`
	CreatedAt    time.Time
}

func (bankTransactionModel) TableName() string {
	return "bank_transactions"
}

func newBankTransactionModel(t domain.BankTransaction) bankTransactionModel {
	return bankTransactionModel{
		ID:           t.ID,
		CompanyID:    t.CompanyID,
		FITID:        t.FITID,
		ImportID:     t.ImportID,
		Date:         t.Date,
		Amount:       t.Amount,
		Description:  truncate(t.Description, descriptionWidth),
		Type:         string(t.Type),
		Category:     truncatePtr(t.Category, categoryWidth),
		Memo:         truncate(t.Memo, descriptionWidth),
		Document:     truncate(t.Document, documentWidth),
		OriginName:   truncate(t.OriginName, originWidth),
		AccountID:    truncatePtr(t.AccountID, refWidth),
		BankID:       truncatePtr(t.BankID, refWidth),
		BranchID:     truncatePtr(t.BranchID, refWidth),
		Reconciled:   t.Reconciled,
		ReconciledAt: t.ReconciledAt,
		ReconciledBy: t.ReconciledBy,
		CreatedAt:    t.CreatedAt,
	}
}

func (m bankTransactionModel) toDomain() domain.BankTransaction {
	return domain.BankTransaction{
		ID:           m.ID,
		CompanyID:    m.CompanyID,
		FITID:        m.FITID,
		ImportID:     m.ImportID,
		Date:         m.Date,
		Amount:       m.Amount,
		Description:  m.Description,
		Type:         domain.TransactionType(m.Type),
		Category:     m.Category,
		Memo:         m.Memo,
		Document:     m.Document,
		OriginName:   m.OriginName,
		AccountID:    m.AccountID,
		BankID:       m.BankID,
		BranchID:     m.BranchID,
		Reconciled:   m.Reconciled,
		ReconciledAt: m.ReconciledAt,
		ReconciledBy: m.ReconciledBy,
		CreatedAt:    m.CreatedAt,
	}
}

// payableModel is a row of contas_pagar
type payableModel struct {
	ID                    string          `gorm:"primaryKey;type:varchar(36)"`
	CompanyID             string          `gorm:"type:varchar(64);not null;index"`
	Descricao             string          `gorm:"type:varchar(500)"`
	Valor                 decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Vencimento            time.Time       `gorm:"type:date"`
	Status                string          `gorm:"type:varchar(32);not null;default:'pendente'"`
	DocumentoBeneficiario string          `gorm:"type:varchar(32)"`
	BankTransactionID     *string         `gorm:"type:varchar(36);index"`
	Reconciled            bool            `gorm:"not null;default:false"`
	ReconciledAt          *time.Time
}

func (payableModel) TableName() string {
	return "contas_pagar"
}

func (m payableModel) toDomain() domain.Account {
	return domain.Account{
		Kind:                domain.Payable,
		ID:                  m.ID,
		CompanyID:           m.CompanyID,
		Description:         m.Descricao,
		Amount:              m.Valor,
		DueDate:             m.Vencimento,
		Status:              m.Status,
		BeneficiaryDocument: m.DocumentoBeneficiario,
		BankTransactionID:   m.BankTransactionID,
		Reconciled:          m.Reconciled,
		ReconciledAt:        m.ReconciledAt,
	}
}

func newPayableModel(a domain.Account) payableModel {
	return payableModel{
		ID:                    a.ID,
		CompanyID:             a.CompanyID,
		Descricao:             truncate(a.Description, descriptionWidth),
		Valor:                 a.Amount,
		Vencimento:            a.DueDate,
		Status:                a.Status,
		DocumentoBeneficiario: truncate(a.BeneficiaryDocument, accountDocWidth),
		BankTransactionID:     a.BankTransactionID,
		Reconciled:            a.Reconciled,
		ReconciledAt:          a.ReconciledAt,
	}
}

// receivableModel is a row of contas_receber
type receivableModel struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)"`
	CompanyID         string          `gorm:"type:varchar(64);not null;index"`
	Descricao         string          `gorm:"type:varchar(500)"`
	ValorTotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DataVencimento    time.Time       `gorm:"type:date"`
	Status            string          `gorm:"type:varchar(32);not null;default:'pendente'"`
	DocumentoCliente  string          `gorm:"type:varchar(32)"`
	BankTransactionID *string         `gorm:"type:varchar(36);index"`
	Reconciled        bool            `gorm:"not null;default:false"`
	ReconciledAt      *time.Time
}

func (receivableModel) TableName() string {
	return "contas_receber"
}

func (m receivableModel) toDomain() domain.Account {
	return domain.Account{
		Kind:                domain.Receivable,
		ID:                  m.ID,
		CompanyID:           m.CompanyID,
		Description:         m.Descricao,
		Amount:              m.ValorTotal,
		DueDate:             m.DataVencimento,
		Status:              m.Status,
		BeneficiaryDocument: m.DocumentoCliente,
		BankTransactionID:   m.BankTransactionID,
		Reconciled:          m.Reconciled,
		ReconciledAt:        m.ReconciledAt,
	}
}

func newReceivableModel(a domain.Account) receivableModel {
	return receivableModel{
		ID:                a.ID,
		CompanyID:         a.CompanyID,
		Descricao:         truncate(a.Description, descriptionWidth),
		ValorTotal:        a.Amount,
		DataVencimento:    a.DueDate,
		Status:            a.Status,
		DocumentoCliente:  truncate(a.BeneficiaryDocument, accountDocWidth),
		BankTransactionID: a.BankTransactionID,
		Reconciled:        a.Reconciled,
		ReconciledAt:      a.ReconciledAt,
	}
}

type matchModel struct {
	ID                string              `gorm:"primaryKey;type:varchar(36)"`
	CompanyID         string              `gorm:"type:varchar(64);not null;index:idx_matches_company_status,priority:1"`
	BankTransactionID string              `gorm:"type:varchar(36);not null;index"`
	ContaPagarID      *string             `gorm:"type:varchar(36);index"`
	ContaReceberID    *string             `gorm:"type:varchar(36);index"`
	MatchType         string              `gorm:"type:varchar(16);not null"`
	MatchScore        int                 `gorm:"not null"`
	MatchDetails      domain.MatchDetails `gorm:"type:json;serializer:json"`
	Status            string              `gorm:"type:varchar(16);not null;index:idx_matches_company_status,priority:2"`
	SuggestionKey     *string             `gorm:"type:varchar(128);uniqueIndex:uq_matches_suggestion"`
	ConfirmedAt       *time.Time
	ConfirmedBy       *string `gorm:"type:varchar(64)"`
	CreatedAt         time.Time
}

func (matchModel) TableName() string {
	return "reconciliation_matches"
}

// suggestionKey identifies the scored pairing of a transaction and an
// account. Manual matches carry none, so a pairing once suggested and
// rejected can still be linked by hand.
func suggestionKey(m domain.Match) *string {
	if m.Type == domain.MatchManual {
		return nil
	}
	key := m.TransactionID + "|" + m.AccountRef().String()
	return &key
}

func newMatchModel(m domain.Match) matchModel {
	return matchModel{
		ID:                m.ID,
		CompanyID:         m.CompanyID,
		BankTransactionID: m.TransactionID,
		ContaPagarID:      m.PayableID,
		ContaReceberID:    m.ReceivableID,
		MatchType:         string(m.Type),
		MatchScore:        m.Score,
		MatchDetails:      m.Details,
		Status:            string(m.Status),
		SuggestionKey:     suggestionKey(m),
		ConfirmedAt:       m.ConfirmedAt,
		ConfirmedBy:       m.ConfirmedBy,
		CreatedAt:         m.CreatedAt,
	}
}

func (m matchModel) toDomain() domain.Match {
	return domain.Match{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		TransactionID: m.BankTransactionID,
		PayableID:     m.ContaPagarID,
		ReceivableID:  m.ContaReceberID,
		Type:          domain.MatchType(m.MatchType),
		Score:         m.MatchScore,
		Details:       m.MatchDetails,
		Status:        domain.MatchStatus(m.Status),
		ConfirmedAt:   m.ConfirmedAt,
		ConfirmedBy:   m.ConfirmedBy,
		CreatedAt:     m.CreatedAt,
	}
}

type ruleConditions struct {
	MessageContains []string `json:"message_contains"`
}

type ruleActions struct {
	Category string `json:"category"`
}

type categorizationRuleModel struct {
	ID         string         `gorm:"primaryKey;type:varchar(36)"`
	CompanyID  string         `gorm:"type:varchar(64);not null;index"`
	RuleName   string         `gorm:"type:varchar(255)"`
	Conditions ruleConditions `gorm:"type:json;serializer:json"`
	Actions    ruleActions    `gorm:"type:json;serializer:json"`
	Priority   int            `gorm:"not null;default:0"`
	Active     bool           `gorm:"not null;default:true"`
}

func (categorizationRuleModel) TableName() string {
	return "categorization_rules"
}

// expand turns one stored rule into one matching rule per message_contains
// entry
func (m categorizationRuleModel) expand() []domain.CategorizationRule {
	rules := make([]domain.CategorizationRule, 0, len(m.Conditions.MessageContains))
	for _, pattern := range m.Conditions.MessageContains {
		rules = append(rules, domain.CategorizationRule{
			ID:        m.ID,
			CompanyID: m.CompanyID,
			Name:      m.RuleName,
			Pattern:   pattern,
			Category:  m.Actions.Category,
			Priority:  m.Priority,
			Active:    m.Active,
		})
	}
	return rules
}

type bankImportModel struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)"`
	CompanyID   string     `gorm:"type:varchar(64);not null;index"`
	FileName    string     `gorm:"type:varchar(255)"`
	Format      string     `gorm:"type:varchar(32)"`
	Total       int        `gorm:"not null"`
	Imported    int        `gorm:"not null"`
	Ignored     int        `gorm:"not null"`
	Duplicates  int        `gorm:"not null"`
	PeriodStart *time.Time `gorm:"type:date"`
	PeriodEnd   *time.Time `gorm:"type:date"`
	ArchiveURI  string     `gorm:"type:varchar(512)"`
	CreatedAt   time.Time
}

func (bankImportModel) TableName() string {
	return "bank_imports"
}

func newBankImportModel(r domain.ImportRecord) bankImportModel {
	return bankImportModel{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		FileName:    truncate(r.FileName, fileNameWidth),
		Format:      r.Format,
		Total:       r.Total,
		Imported:    r.Imported,
		Ignored:     r.Ignored,
		Duplicates:  r.Duplicates,
		PeriodStart: r.Period.Start,
		PeriodEnd:   r.Period.End,
		ArchiveURI:  r.ArchiveURI,
		CreatedAt:   r.CreatedAt,
	}
}
