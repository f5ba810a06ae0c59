package parser

import (
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
	"github.com/tirasundara/bpo-reconciliation/pkg/locale"
)

// BancoDoBrasilParser reads Banco do Brasil CSV exports. Values are signed
// or carry a trailing C/D marker; balance lines read "Saldo Anterior",
// "Saldo do dia" or the spaced "S A L D O".
type BancoDoBrasilParser struct {
	extractor
}

// NewBancoDoBrasilParser creates a new BancoDoBrasilParser
func NewBancoDoBrasilParser() *BancoDoBrasilParser {
	return &BancoDoBrasilParser{
		extractor: extractor{
			cols: columns{
				date:        []string{"data"},
				description: []string{"histórico"},
				amount:      []string{"valor"},
				document:    []string{"número do documento", "documento"},
				origin:      []string{"dependência origem"},
			},
			skip: withSkips(),
		},
	}
}

func (p *BancoDoBrasilParser) Name() string {
	return "banco_do_brasil"
}

func (p *BancoDoBrasilParser) Detect(sheet *fileutil.Sheet) bool {
	if sheet.HasColumns("dependência origem", "histórico") ||
		sheet.HasColumns("histórico", "data do balancete") {
		return true
	}

	// headerless layouts still carry the spaced balance banner as a row
	if !sheet.HasColumns("data", "histórico", "valor") {
		return false
	}
	for _, row := range sheet.Rows {
		if locale.Fold(row.Text("histórico")) == "s a l d o" {
			return true
		}
	}
	return false
}

func (p *BancoDoBrasilParser) Parse(row fileutil.Row) (domain.CanonicalTransaction, bool) {
	return p.extract(row)
}
