package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/parser"
)

const (
	defaultWorkers   = 1
	defaultBatchSize = 500
)

// Archiver stores the raw statement file and returns its location
type Archiver interface {
	Archive(ctx context.Context, companyID, fileName string, data []byte) (string, error)
}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	Parsers   []parser.Parser
	Identity  IdentityFunc
	Workers   int
	BatchSize int
	Archiver  Archiver
	Notifier  Notifier
}

// Service ingests bank statement files for a tenant
type Service struct {
	pipeline *Pipeline
	log      zerolog.Logger
}

// NewService creates a new ingestion Service over store
func NewService(store domain.Store, opts Options, log zerolog.Logger) *Service {
	if len(opts.Parsers) == 0 {
		opts.Parsers = parser.Default()
	}
	if opts.Identity == nil {
		opts.Identity = NativeOrContentHash
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Notifier == nil {
		opts.Notifier = NewLogNotifier(log)
	}

	pipeline := NewPipeline(
		&ReadWorkbookStep{},
		&DetectFormatStep{Parsers: opts.Parsers},
		&ParseRowsStep{Identity: opts.Identity, Workers: opts.Workers, BatchSize: opts.BatchSize, Log: log},
		&CategorizeStep{Rules: store.Rules()},
		&ArchiveStep{Archiver: opts.Archiver, Log: log},
		&PersistStep{Store: store},
		&NotifyStep{Notifier: opts.Notifier},
	)

	return &Service{
		pipeline: pipeline,
		log:      log,
	}
}

// Import parses and stores one statement file. Rows that cannot be parsed
// are counted, never returned as errors; an empty or unreadable file yields
// domain.ErrStructuralInput.
func (s *Service) Import(ctx context.Context, req Request) (domain.ImportResult, error) {
	if strings.TrimSpace(req.CompanyID) == "" {
		return domain.ImportResult{}, fmt.Errorf("%w: company id is required", domain.ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return domain.ImportResult{}, fmt.Errorf("%w: file is empty", domain.ErrStructuralInput)
	}

	state := newState(req)
	log := s.log.With().
		Str("import_id", state.ImportID).
		Str("company_id", req.CompanyID).
		Str("file_name", req.FileName).
		Logger()

	if err := s.pipeline.Execute(ctx, state); err != nil {
		log.Error().Err(err).Msg("import failed")
		return domain.ImportResult{}, fmt.Errorf("importing %s: %w", req.FileName, err)
	}

	log.Info().
		Str("format", state.Result.Format).
		Int("total", state.Result.Total).
		Int("imported", state.Result.Imported).
		Int("ignored", state.Result.Ignored).
		Int("duplicates", state.Result.Duplicates).
		Msg("import finished")

	return state.Result, nil
}
