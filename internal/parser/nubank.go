package parser

import (
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// NubankParser reads Nubank account CSVs ("Data,Valor,Identificador,
// Descrição"). The Identificador column is a native unique id, so rows from
// this layout carry ExternalID.
type NubankParser struct {
	extractor
}

// NewNubankParser creates a new NubankParser
func NewNubankParser() *NubankParser {
	return &NubankParser{
		extractor: extractor{
			cols: columns{
				date:        []string{"data"},
				description: []string{"descrição"},
				amount:      []string{"valor"},
				externalID:  []string{"identificador"},
			},
			skip: withSkips(),
		},
	}
}

func (p *NubankParser) Name() string {
	return "nubank"
}

func (p *NubankParser) Detect(sheet *fileutil.Sheet) bool {
	return sheet.HasColumns("data", "valor", "identificador", "descrição")
}

func (p *NubankParser) Parse(row fileutil.Row) (domain.CanonicalTransaction, bool) {
	return p.extract(row)
}
