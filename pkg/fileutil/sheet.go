package fileutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tirasundara/bpo-reconciliation/pkg/locale"
)

const headerScanLimit = 30

var (
	// ErrNoData is returned when a workbook has no non-blank rows
	ErrNoData = errors.New("workbook has no data")

	headerHints = []string{"data", "date", "dt"}

	// folded names of the other columns statements carry
	columnHints = []string{
		"historico", "descricao", "description", "lancamento", "memo", "valor", "amount", "value",
		"credito", "debito", "deb/cred", "tipo", "documento", "numero do documento", "doc", "dcto", "docto",
		"nr", "saldo", "saldos", "identificador", "dependencia origem", "ag./origem", "origem", "favorecido",
	}
)

// Cell is one spreadsheet value. Numeric is set only when the source format
// typed the cell as a number, so serial dates and signed amounts survive.
type Cell struct {
	Text    string
	Number  float64
	Numeric bool
}

// TextCell wraps a textual value
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NumberCell wraps a numeric value
func NumberCell(n float64) Cell {
	return Cell{Text: strconv.FormatFloat(n, 'f', -1, 64), Number: n, Numeric: true}
}

// Value returns float64 for numeric cells and string otherwise
func (c Cell) Value() any {
	if c.Numeric {
		return c.Number
	}
	return c.Text
}

// IsBlank reports whether the cell carries nothing
func (c Cell) IsBlank() bool {
	return !c.Numeric && strings.TrimSpace(c.Text) == ""
}

func (c Cell) String() string {
	return strings.TrimSpace(c.Text)
}

// Row is a data row keyed by folded header names
type Row struct {
	Line  int
	cells map[string]Cell
}

// NewRow builds a row, folding the keys of values
func NewRow(line int, values map[string]Cell) Row {
	cells := make(map[string]Cell, len(values))
	for k, v := range values {
		cells[locale.Fold(k)] = v
	}
	return Row{Line: line, cells: cells}
}

// Get returns the first non-blank cell among keys, tried in order
func (r Row) Get(keys ...string) (Cell, bool) {
	for _, key := range keys {
		if c, ok := r.cells[locale.Fold(key)]; ok && !c.IsBlank() {
			return c, true
		}
	}
	return Cell{}, false
}

// Text returns the trimmed text of the first non-blank cell among keys
func (r Row) Text(keys ...string) string {
	c, ok := r.Get(keys...)
	if !ok {
		return ""
	}
	return c.String()
}

// Has reports whether the row has a column for any of keys, blank or not
func (r Row) Has(keys ...string) bool {
	for _, key := range keys {
		if _, ok := r.cells[locale.Fold(key)]; ok {
			return true
		}
	}
	return false
}

// Sheet is a decoded worksheet: the lines above the header (Banner), the
// folded header and the non-blank data rows below it.
type Sheet struct {
	Name   string
	Header []string
	Banner []string
	Rows   []Row
}

// HasColumns reports whether every key is a header column
func (s *Sheet) HasColumns(keys ...string) bool {
	for _, key := range keys {
		if !s.hasColumn(key) {
			return false
		}
	}
	return true
}

// HasAnyColumn reports whether at least one key is a header column
func (s *Sheet) HasAnyColumn(keys ...string) bool {
	for _, key := range keys {
		if s.hasColumn(key) {
			return true
		}
	}
	return false
}

// BannerContains reports whether a banner line contains marker, ignoring
// case and accents
func (s *Sheet) BannerContains(marker string) bool {
	marker = locale.Fold(marker)
	for _, line := range s.Banner {
		if strings.Contains(locale.Fold(line), marker) {
			return true
		}
	}
	return false
}

func (s *Sheet) hasColumn(key string) bool {
	key = locale.Fold(key)
	for _, h := range s.Header {
		if h == key {
			return true
		}
	}
	return false
}

// BuildSheet locates the header row in grid and keys every following
// non-blank row by it
func BuildSheet(name string, grid [][]Cell) (*Sheet, error) {
	headerRow := locateHeader(grid)
	if headerRow < 0 {
		return nil, ErrNoData
	}

	header := headerKeys(grid[headerRow])
	sheet := &Sheet{
		Name:   name,
		Header: header,
	}

	for i := 0; i < headerRow; i++ {
		if line := joinCells(grid[i]); line != "" {
			sheet.Banner = append(sheet.Banner, line)
		}
	}

	for i := headerRow + 1; i < len(grid); i++ {
		if isBlankRow(grid[i]) {
			continue
		}

		cells := make(map[string]Cell, len(header))
		for j, key := range header {
			if j < len(grid[i]) {
				cells[key] = grid[i][j]
			} else {
				cells[key] = Cell{}
			}
		}

		sheet.Rows = append(sheet.Rows, Row{Line: i + 1, cells: cells})
	}

	return sheet, nil
}

// locateHeader picks, among rows naming a date column, the one naming the
// most known statement columns. Rows holding a date or a number are values,
// not headers ("Data de emissão;12/03/2024"). Without such a row it falls
// back to the first row with two or more filled cells.
func locateHeader(grid [][]Cell) int {
	limit := min(len(grid), headerScanLimit)

	best, bestScore := -1, 0
	for i := 0; i < limit; i++ {
		if score := headerScore(grid[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return best
	}

	for i := 0; i < limit; i++ {
		if countFilled(grid[i]) >= 2 {
			return i
		}
	}

	return -1
}

// headerScore counts the known column names in row, or returns zero when
// row cannot be a header
func headerScore(row []Cell) int {
	if countFilled(row) < 2 {
		return 0
	}

	hasDate, score := false, 0
	for _, c := range row {
		if c.IsBlank() {
			continue
		}
		if c.Numeric {
			return 0
		}
		if _, ok := locale.ParseDate(c.Text); ok {
			return 0
		}

		folded := locale.Fold(c.Text)
		if matchesHint(folded, headerHints) {
			hasDate = true
			score++
		} else if matchesHint(folded, columnHints) {
			score++
		}
	}

	if !hasDate {
		return 0
	}
	return score
}

func matchesHint(folded string, hints []string) bool {
	for _, hint := range hints {
		if folded == hint || strings.HasPrefix(folded, hint+" ") || strings.HasPrefix(folded, hint+".") {
			return true
		}
	}
	return false
}

func headerKeys(row []Cell) []string {
	keys := make([]string, len(row))
	seen := make(map[string]int, len(row))

	for i, c := range row {
		key := locale.Fold(c.Text)
		if key == "" {
			key = fmt.Sprintf("column %d", i+1)
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s #%d", key, n)
		}
		keys[i] = key
	}

	return keys
}

func countFilled(row []Cell) int {
	n := 0
	for _, c := range row {
		if !c.IsBlank() {
			n++
		}
	}
	return n
}

func isBlankRow(row []Cell) bool {
	return countFilled(row) == 0
}

func joinCells(row []Cell) string {
	parts := make([]string, 0, len(row))
	for _, c := range row {
		if !c.IsBlank() {
			parts = append(parts, c.String())
		}
	}
	return strings.Join(parts, " ")
}
