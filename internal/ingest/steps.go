package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/parser"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// ReadWorkbookStep decodes the raw file into a sheet
type ReadWorkbookStep struct{}

func (s *ReadWorkbookStep) Execute(_ context.Context, state *State) error {
	sheet, err := fileutil.ReadWorkbook(state.Request.Data, state.Request.FileName)
	if errors.Is(err, fileutil.ErrNoData) {
		return fmt.Errorf("%w: %s is empty", domain.ErrStructuralInput, state.Request.FileName)
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", domain.ErrStructuralInput, state.Request.FileName, err)
	}
	if len(sheet.Rows) == 0 {
		return fmt.Errorf("%w: %s has a header but no rows", domain.ErrStructuralInput, state.Request.FileName)
	}

	state.Sheet = sheet
	state.Result.Total = len(sheet.Rows)
	return nil
}

// DetectFormatStep picks the first parser whose Detect matches
type DetectFormatStep struct {
	Parsers []parser.Parser
}

func (s *DetectFormatStep) Execute(_ context.Context, state *State) error {
	p := parser.Select(s.Parsers, state.Sheet)
	if p == nil {
		return fmt.Errorf("%w: no parser recognizes %s", domain.ErrStructuralInput, state.Request.FileName)
	}

	state.Parser = p
	state.Result.Format = p.Name()
	return nil
}

// ParseRowsStep turns sheet rows into bank transactions, counting rows it
// cannot parse as ignored and repeated identities as duplicates
type ParseRowsStep struct {
	Identity  IdentityFunc
	Workers   int
	BatchSize int
	Log       zerolog.Logger
}

func (s *ParseRowsStep) Execute(ctx context.Context, state *State) error {
	outcomes, err := parseRows(ctx, state.Parser, state.Sheet.Rows, s.Workers, s.BatchSize)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(outcomes))
	txns := make([]domain.BankTransaction, 0, len(outcomes))

	for _, o := range outcomes {
		if !o.ok {
			state.Result.Ignored++
			s.Log.Debug().Int("line", o.line).Str("format", state.Result.Format).Msg("row ignored")
			continue
		}

		fitid := s.Identity(o.txn)
		if seen[fitid] {
			state.Result.Duplicates++
			continue
		}
		seen[fitid] = true

		state.Result.Period.Include(o.txn.Date)
		txns = append(txns, newBankTransaction(state, fitid, o.txn))
	}

	state.Transactions = txns
	return nil
}

func newBankTransaction(state *State, fitid string, c domain.CanonicalTransaction) domain.BankTransaction {
	req := state.Request
	return domain.BankTransaction{
		ID:          uuid.NewString(),
		CompanyID:   req.CompanyID,
		FITID:       fitid,
		ImportID:    state.ImportID,
		Date:        c.Date,
		Amount:      c.SignedAmount(),
		Description: c.Description,
		Type:        c.Type,
		Memo:        c.Memo,
		Document:    c.Document,
		OriginName:  c.OriginName,
		AccountID:   optional(req.AccountID),
		BankID:      optional(req.BankID),
		BranchID:    optional(req.BranchID),
		CreatedAt:   state.StartedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CategorizeStep applies the tenant's active rules to each transaction
type CategorizeStep struct {
	Rules domain.RuleRepository
}

func (s *CategorizeStep) Execute(ctx context.Context, state *State) error {
	if len(state.Transactions) == 0 {
		return nil
	}

	rules, err := s.Rules.ListActiveRules(ctx, state.Request.CompanyID)
	if err != nil {
		return fmt.Errorf("loading categorization rules: %w", err)
	}

	categorizer := NewCategorizer(rules)
	for i := range state.Transactions {
		state.Transactions[i].Category = categorizer.Categorize(state.Transactions[i].Description)
	}
	return nil
}

// ArchiveStep keeps the raw file. Failures are logged and never abort the
// import.
type ArchiveStep struct {
	Archiver Archiver
	Log      zerolog.Logger
}

func (s *ArchiveStep) Execute(ctx context.Context, state *State) error {
	if s.Archiver == nil {
		return nil
	}

	uri, err := s.Archiver.Archive(ctx, state.Request.CompanyID, state.Request.FileName, state.Request.Data)
	if err != nil {
		s.Log.Warn().Err(err).Str("import_id", state.ImportID).Msg("archiving statement failed")
		return nil
	}

	state.ArchiveURI = uri
	return nil
}

// PersistStep inserts the transactions and the import record atomically
type PersistStep struct {
	Store domain.Store
}

func (s *PersistStep) Execute(ctx context.Context, state *State) error {
	err := s.Store.WithinTx(ctx, func(tx domain.Store) error {
		inserted, err := tx.Transactions().InsertTransactions(ctx, state.Transactions)
		if err != nil {
			return fmt.Errorf("inserting transactions: %w", err)
		}

		state.Result.Imported = inserted
		state.Result.Duplicates += len(state.Transactions) - inserted

		record := domain.ImportRecord{
			ID:         state.ImportID,
			CompanyID:  state.Request.CompanyID,
			FileName:   state.Request.FileName,
			Format:     state.Result.Format,
			Total:      state.Result.Total,
			Imported:   state.Result.Imported,
			Ignored:    state.Result.Ignored,
			Duplicates: state.Result.Duplicates,
			Period:     state.Result.Period,
			ArchiveURI: state.ArchiveURI,
			CreatedAt:  state.StartedAt,
		}
		if err := tx.Imports().CreateImport(ctx, record); err != nil {
			return fmt.Errorf("recording import: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	state.Result.ImportID = state.ImportID
	return nil
}

// NotifyStep emits ImportCompleted
type NotifyStep struct {
	Notifier Notifier
}

func (s *NotifyStep) Execute(ctx context.Context, state *State) error {
	if s.Notifier == nil {
		return nil
	}

	s.Notifier.ImportCompleted(ctx, ImportCompleted{
		ImportID:  state.ImportID,
		CompanyID: state.Request.CompanyID,
		FileName:  state.Request.FileName,
		Format:    state.Result.Format,
		Imported:  state.Result.Imported,
		Period:    state.Result.Period,
	})
	return nil
}

func newState(req Request) *State {
	return &State{
		Request:   req,
		ImportID:  uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}
