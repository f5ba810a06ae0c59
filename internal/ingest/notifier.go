package ingest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

// ImportCompleted is emitted once an import has been persisted
type ImportCompleted struct {
	ImportID  string
	CompanyID string
	FileName  string
	Format    string
	Imported  int
	Period    domain.Period
}

// Notifier receives import events. Implementations must not block the
// import; downstream work happens elsewhere.
type Notifier interface {
	ImportCompleted(ctx context.Context, event ImportCompleted)
}

// LogNotifier writes import events to a logger
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) ImportCompleted(_ context.Context, event ImportCompleted) {
	evt := n.log.Info().
		Str("event", "import_completed").
		Str("import_id", event.ImportID).
		Str("company_id", event.CompanyID).
		Str("file_name", event.FileName).
		Str("format", event.Format).
		Int("imported", event.Imported)
	if event.Period.Start != nil {
		evt = evt.Time("period_start", *event.Period.Start).Time("period_end", *event.Period.End)
	}
	evt.Msg("import completed")
}
