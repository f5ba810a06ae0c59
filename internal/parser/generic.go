package parser

import (
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

// GenericParser is the fallback for unknown layouts. It matches each field
// against a prioritized list of header synonyms and always detects.
type GenericParser struct {
	extractor
}

// NewGenericParser creates a new GenericParser
func NewGenericParser() *GenericParser {
	return &GenericParser{
		extractor: extractor{
			cols: columns{
				date: []string{
					"data", "date", "data lançamento", "data do lançamento", "data mov.",
					"data movimento", "data da transação", "data operação", "dt",
				},
				description: []string{
					"descrição", "histórico", "lançamento", "memo", "description",
					"descrição do lançamento", "detalhes", "movimentação", "transação", "estabelecimento",
				},
				amount: []string{
					"valor", "valor (R$)", "valor R$", "amount", "value", "quantia", "montante", "valor do lançamento",
				},
				credit:    []string{"crédito", "crédito (R$)", "entrada", "entradas", "credit"},
				debit:     []string{"débito", "débito (R$)", "saída", "saídas", "debit"},
				direction: []string{"tipo", "type", "d/c", "c/d", "natureza", "deb/cred", "tipo de lançamento"},
				document:  []string{"documento", "nº documento", "número do documento", "doc.", "doc", "dcto.", "nr. doc."},
				memo:      []string{"observação", "complemento", "obs"},
				origin:    []string{"origem", "favorecido", "beneficiário", "contraparte", "nome", "cpf/cnpj"},
				externalID: []string{
					"identificador", "fitid", "id da transação",
				},
			},
			skip: withSkips(),
		},
	}
}

func (p *GenericParser) Name() string {
	return "generic"
}

func (p *GenericParser) Detect(*fileutil.Sheet) bool {
	return true
}

func (p *GenericParser) Parse(row fileutil.Row) (domain.CanonicalTransaction, bool) {
	return p.extract(row)
}
