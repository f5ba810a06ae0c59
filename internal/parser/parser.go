package parser

import (
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// Parser extracts canonical transactions from one bank export layout
type Parser interface {
	// Name identifies the layout in import results
	Name() string

	// Detect is a pure predicate over the decoded sheet: its header, its
	// banner lines and, when a layout needs it, a scan of the rows
	Detect(sheet *fileutil.Sheet) bool

	// Parse returns false for rows that are not transactions or lack a
	// valid date, description or amount
	Parse(row fileutil.Row) (domain.CanonicalTransaction, bool)
}

// Default returns the supported layouts in detection order. The generic
// parser is last and always detects.
func Default() []Parser {
	return []Parser{
		NewItauParser(),
		NewBradescoParser(),
		NewBancoDoBrasilParser(),
		NewCaixaParser(),
		NewNubankParser(),
		NewGenericParser(),
	}
}

// Select returns the first parser whose Detect matches, or nil
func Select(parsers []Parser, sheet *fileutil.Sheet) Parser {
	for _, p := range parsers {
		if p.Detect(sheet) {
			return p
		}
	}
	return nil
}
