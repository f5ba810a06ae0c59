package fileutil_test

import (
	"strings"
	"testing"

	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

func TestCSVReader(t *testing.T) {
	input := "kind,id,valor\npayable,P1,\"1.234,56\"\nreceivable,R1,10\n"
	reader := fileutil.NewCSVReader(strings.NewReader(input), ',')

	header, err := reader.ReadHeader()
	if err != nil {
		t.Fatalf("Failed to read header: %v", err)
	}
	if len(header) != 3 || header[2] != "valor" {
		t.Errorf("Expected header [kind id valor], got %v", header)
	}

	var rows [][]string
	err = reader.ReadAndProcessByRow(func(row []string) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to process rows: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0][2] != "1.234,56" {
		t.Errorf("Expected quoted amount '1.234,56', got %q", rows[0][2])
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		text string
		want rune
	}{
		{"Data;Histórico;Valor\n", ';'},
		{"\n\nData,Descrição,Valor", ','},
		{"Data\tValor\tSaldo", '\t'},
		{"single", ','},
	}

	for _, tt := range tests {
		if got := fileutil.SniffDelimiter(tt.text); got != tt.want {
			t.Errorf("SniffDelimiter(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestDecodeTextWindows1252(t *testing.T) {
	// "Histórico" with ó encoded as 0xF3
	got, err := fileutil.DecodeText([]byte("Hist\xF3rico"))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if got != "Histórico" {
		t.Errorf("Expected 'Histórico', got %q", got)
	}
}

func TestHeaderIndex(t *testing.T) {
	header := []string{"KIND", "Descrição", "valor"}

	columns, err := fileutil.HeaderIndex(header, []string{"kind", "descricao", "valor"})
	if err != nil {
		t.Fatalf("Expected header to map, got error: %v", err)
	}
	if columns["descricao"] != 1 || columns["valor"] != 2 {
		t.Errorf("Unexpected column map %v", columns)
	}

	if _, err := fileutil.HeaderIndex(header, []string{"vencimento"}); err == nil {
		t.Errorf("Expected an error for a missing column")
	}
}
