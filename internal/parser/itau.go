package parser

import (
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// ItauParser reads Itaú "Extrato Conta Corrente" exports: a signed
// "Valor (R$)" column and a running "Saldos (R$)" column, with daily
// "SALDO DO DIA" lines interleaved
type ItauParser struct {
	extractor
}

// NewItauParser creates a new ItauParser
func NewItauParser() *ItauParser {
	return &ItauParser{
		extractor: extractor{
			cols: columns{
				date:        []string{"data"},
				description: []string{"lançamento", "histórico"},
				amount:      []string{"valor (R$)", "valor"},
				origin:      []string{"ag./origem", "agência/origem"},
			},
			skip: withSkips("lancamentos futuros"),
		},
	}
}

func (p *ItauParser) Name() string {
	return "itau"
}

func (p *ItauParser) Detect(sheet *fileutil.Sheet) bool {
	if sheet.BannerContains("itaú") || sheet.BannerContains("itau unibanco") {
		return true
	}
	return sheet.HasColumns("lançamento", "valor (R$)") &&
		sheet.HasAnyColumn("ag./origem", "saldos (R$)")
}

func (p *ItauParser) Parse(row fileutil.Row) (domain.CanonicalTransaction, bool) {
	return p.extract(row)
}
