package parser

import (
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// CaixaParser reads Caixa Econômica Federal exports: unsigned "Valor" with
// the direction in a separate "Deb/Cred" column
type CaixaParser struct {
	extractor
}

// NewCaixaParser creates a new CaixaParser
func NewCaixaParser() *CaixaParser {
	return &CaixaParser{
		extractor: extractor{
			cols: columns{
				date:        []string{"data mov.", "data movimento", "data"},
				description: []string{"histórico"},
				amount:      []string{"valor"},
				direction:   []string{"deb/cred"},
				document:    []string{"nr. doc.", "nr. documento"},
			},
			skip: withSkips(),
		},
	}
}

func (p *CaixaParser) Name() string {
	return "caixa"
}

func (p *CaixaParser) Detect(sheet *fileutil.Sheet) bool {
	if sheet.BannerContains("caixa econômica") {
		return true
	}
	return sheet.HasColumns("deb/cred") || sheet.HasColumns("data mov.", "nr. doc.")
}

func (p *CaixaParser) Parse(row fileutil.Row) (domain.CanonicalTransaction, bool) {
	return p.extract(row)
}
