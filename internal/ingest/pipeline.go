package ingest

import (
	"context"
	"time"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/parser"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// Request is one statement file to ingest for a tenant
type Request struct {
	CompanyID string
	FileName  string
	Data      []byte

	// optional bank account coordinates stamped on every row
	AccountID string
	BankID    string
	BranchID  string
}

// Step represents a single step in the ingestion pipeline
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State holds the shared state across all pipeline steps
type State struct {
	Request      Request
	ImportID     string
	StartedAt    time.Time
	Sheet        *fileutil.Sheet
	Parser       parser.Parser
	Transactions []domain.BankTransaction
	ArchiveURI   string
	Result       domain.ImportResult
}

// Pipeline runs steps in order and stops at the first error
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all pipeline steps in sequence
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.Execute(ctx, state); err != nil {
			return err
		}
	}
	return nil
}
