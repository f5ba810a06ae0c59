package parser

import (
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// BradescoParser reads Bradesco exports, which split inflows and outflows
// into "Crédito (R$)" and "Débito (R$)" columns and carry a "Dcto." number
type BradescoParser struct {
	extractor
}

// NewBradescoParser creates a new BradescoParser
func NewBradescoParser() *BradescoParser {
	return &BradescoParser{
		extractor: extractor{
			cols: columns{
				date:        []string{"data"},
				description: []string{"lançamento", "histórico"},
				credit:      []string{"crédito (R$)", "crédito"},
				debit:       []string{"débito (R$)", "débito"},
				document:    []string{"dcto.", "docto."},
			},
			skip: withSkips("ultimos lancamentos"),
		},
	}
}

func (p *BradescoParser) Name() string {
	return "bradesco"
}

func (p *BradescoParser) Detect(sheet *fileutil.Sheet) bool {
	if sheet.BannerContains("bradesco") {
		return true
	}
	return sheet.HasColumns("crédito (R$)", "débito (R$)") &&
		sheet.HasAnyColumn("dcto.", "docto.")
}

func (p *BradescoParser) Parse(row fileutil.Row) (domain.CanonicalTransaction, bool) {
	return p.extract(row)
}
