package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
	"github.com/tirasundara/bpo-reconciliation/pkg/locale"
)

// columns lists, per field, the header names a layout may use, in priority
// order
type columns struct {
	date        []string
	description []string
	amount      []string
	credit      []string
	debit       []string
	direction   []string
	document    []string
	memo        []string
	origin      []string
	externalID  []string
}

// descriptions of balance-forward, running total and similar lines. Matched
// whole, so payees such as "TOTAL EXPRESS LTDA" still import.
var balanceLines = []string{
	"saldo", "saldo anterior", "saldo do dia", "saldo dia", "saldo final", "saldo inicial",
	"saldo atual", "saldo total", "saldo disponivel", "saldo total disponivel dia",
	"s a l d o", "total", "subtotal", "totais", "total geral",
}

type extractor struct {
	cols columns
	skip []string
}

func (e extractor) extract(row fileutil.Row) (domain.CanonicalTransaction, bool) {
	dateCell, ok := row.Get(e.cols.date...)
	if !ok {
		return domain.CanonicalTransaction{}, false
	}
	date, ok := locale.ParseDate(dateCell.Value())
	if !ok {
		return domain.CanonicalTransaction{}, false
	}

	description := row.Text(e.cols.description...)
	if description == "" || e.isSkipped(description) {
		return domain.CanonicalTransaction{}, false
	}

	amount, direction, ok := e.resolveAmount(row)
	if !ok {
		return domain.CanonicalTransaction{}, false
	}

	return domain.CanonicalTransaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        direction,
		Memo:        row.Text(e.cols.memo...),
		Document:    row.Text(e.cols.document...),
		OriginName:  row.Text(e.cols.origin...),
		ExternalID:  row.Text(e.cols.externalID...),
	}, true
}

func (e extractor) isSkipped(description string) bool {
	folded := strings.TrimRight(locale.Fold(description), " :.")
	for _, phrase := range e.skip {
		if folded == phrase {
			return true
		}
	}
	return false
}

// resolveAmount prefers separate credit/debit columns, taking whichever is
// non-zero; otherwise it reads the single amount column and infers the
// direction from its sign, then a C/D marker on the value, then the
// layout's direction column. A zero or missing amount rejects the row.
func (e extractor) resolveAmount(row fileutil.Row) (decimal.Decimal, domain.TransactionType, bool) {
	if row.Has(e.cols.credit...) || row.Has(e.cols.debit...) {
		if v, ok := positiveAmount(row, e.cols.credit); ok {
			return v, domain.Credit, true
		}
		if v, ok := positiveAmount(row, e.cols.debit); ok {
			return v, domain.Debit, true
		}
	}

	cell, ok := row.Get(e.cols.amount...)
	if !ok {
		return decimal.Zero, "", false
	}

	value := cell.Value()
	var marker domain.TransactionType
	if !cell.Numeric {
		var text string
		text, marker = splitDirectionMarker(cell.String())
		value = text
	}

	amount, ok := locale.ParseCurrency(value)
	if !ok || !amount.IsPositive() {
		return decimal.Zero, "", false
	}

	switch {
	case locale.IsNegative(value):
		return amount, domain.Debit, true
	case marker != "":
		return amount, marker, true
	}

	if dir, ok := row.Get(e.cols.direction...); ok {
		if t, ok := parseDirection(dir.String()); ok {
			return amount, t, true
		}
	}

	return amount, domain.Credit, true
}

func positiveAmount(row fileutil.Row, keys []string) (decimal.Decimal, bool) {
	cell, ok := row.Get(keys...)
	if !ok {
		return decimal.Zero, false
	}
	v, ok := locale.ParseCurrency(cell.Value())
	if !ok || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v, true
}

// splitDirectionMarker strips a trailing C or D ("1.234,56 D")
func splitDirectionMarker(s string) (string, domain.TransactionType) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s, ""
	}

	last := s[len(s)-1]
	prev := s[len(s)-2]
	if prev != ' ' && (prev < '0' || prev > '9') {
		return s, ""
	}

	switch last {
	case 'D', 'd':
		return strings.TrimSpace(s[:len(s)-1]), domain.Debit
	case 'C', 'c':
		return strings.TrimSpace(s[:len(s)-1]), domain.Credit
	}
	return s, ""
}

func parseDirection(s string) (domain.TransactionType, bool) {
	switch locale.Fold(s) {
	case "d", "db", "deb", "debito", "debit", "saida", "s", "-":
		return domain.Debit, true
	case "c", "cr", "cred", "credito", "credit", "entrada", "e", "+":
		return domain.Credit, true
	}
	return "", false
}

func withSkips(extra ...string) []string {
	return append(append([]string{}, balanceLines...), extra...)
}
