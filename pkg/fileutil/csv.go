package fileutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVReader provides a helper/utility to read delimited statement exports
type CSVReader struct {
	reader *csv.Reader
}

// NewCSVReader returns a CSVReader over r using the given field delimiter
func NewCSVReader(r io.Reader, comma rune) *CSVReader {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // bank exports pad rows unevenly
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	return &CSVReader{
		reader: reader,
	}
}

// ReadHeader reads ONLY the next record, which callers treat as the header
func (r *CSVReader) ReadHeader() ([]string, error) {
	header, err := r.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	return header, nil
}

// ReadAndProcessByRow streams every remaining record through processorFn
func (r *CSVReader) ReadAndProcessByRow(processorFn func([]string) error) error {
	for {
		row, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading CSV row: %w", err)
		}

		if err = processorFn(row); err != nil {
			return err
		}
	}

	return nil
}

// DecodeText strips a UTF-8 BOM and falls back to Windows-1252, the encoding
// most Brazilian bank portals still export with.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding windows-1252 text: %w", err)
	}

	return string(decoded), nil
}

// SniffDelimiter picks the most frequent of ';', ',' and tab on the first
// non-empty line
func SniffDelimiter(text string) rune {
	line := text
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	best, bestCount := ',', 0
	for _, candidate := range []rune{';', ',', '\t'} {
		if n := strings.Count(line, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}

	return best
}

func readCSV(data []byte) ([][]Cell, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}

	reader := NewCSVReader(strings.NewReader(text), SniffDelimiter(text))

	var grid [][]Cell
	err = reader.ReadAndProcessByRow(func(row []string) error {
		cells := make([]Cell, len(row))
		for i, value := range row {
			cells[i] = TextCell(value)
		}
		grid = append(grid, cells)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return grid, nil
}
