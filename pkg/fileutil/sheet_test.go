package fileutil_test

import (
	"strings"
	"testing"

	"github.com/tirasundara/bpo-reconciliation/pkg/fileutil"
)

func textGrid(lines ...string) [][]fileutil.Cell {
	grid := make([][]fileutil.Cell, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		for _, v := range strings.Split(line, "|") {
			grid[i] = append(grid[i], fileutil.TextCell(v))
		}
	}
	return grid
}

func TestBuildSheetPrefersDateHeader(t *testing.T) {
	grid := textGrid(
		"Banco|Agência|Conta",
		"Data de emissão: 15/03/2024",
		"Data Mov.|Nr. Doc.|Histórico|Valor|Deb/Cred",
		"10/03/2024|001|PIX|150,00|C",
	)

	sheet, err := fileutil.BuildSheet("caixa", grid)
	if err != nil {
		t.Fatalf("Expected sheet, got error: %v", err)
	}

	if len(sheet.Banner) != 2 {
		t.Errorf("Expected 2 banner lines, got %v", sheet.Banner)
	}
	if !sheet.HasColumns("data mov.", "deb/cred") {
		t.Errorf("Expected header row 3 to be chosen, got %v", sheet.Header)
	}
	if len(sheet.Rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(sheet.Rows))
	}
}

func TestBuildSheetIgnoresBannersStartingWithData(t *testing.T) {
	tests := []struct {
		name   string
		grid   [][]fileutil.Cell
		banner int
	}{
		{
			name: "banner with a date value",
			grid: textGrid(
				"Data de emissão|12/03/2024",
				"Data|Descrição|Valor",
				"05/03/2024|PIX|10,00",
			),
			banner: 1,
		},
		{
			name: "banner with fewer known columns",
			grid: textGrid(
				"Data da consulta|Agência 0001",
				"Período|Conta 12345-6",
				"Data|Descrição|Valor",
				"05/03/2024|PIX|10,00",
			),
			banner: 2,
		},
		{
			name: "banner with a numeric cell",
			grid: [][]fileutil.Cell{
				{fileutil.TextCell("Data base"), fileutil.NumberCell(45363)},
				{fileutil.TextCell("Data"), fileutil.TextCell("Descrição"), fileutil.TextCell("Valor")},
				{fileutil.TextCell("05/03/2024"), fileutil.TextCell("PIX"), fileutil.TextCell("10,00")},
			},
			banner: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := fileutil.BuildSheet("generic", tt.grid)
			if err != nil {
				t.Fatalf("Expected sheet, got error: %v", err)
			}

			if !sheet.HasColumns("data", "descrição", "valor") {
				t.Errorf("Expected the Data|Descrição|Valor header, got %v", sheet.Header)
			}
			if len(sheet.Banner) != tt.banner {
				t.Errorf("Expected %d banner lines, got %v", tt.banner, sheet.Banner)
			}
			if len(sheet.Rows) != 1 || sheet.Rows[0].Text("descrição") != "PIX" {
				t.Errorf("Expected the PIX row, got %d rows", len(sheet.Rows))
			}
		})
	}
}

func TestBuildSheetFallsBackToFirstFilledRow(t *testing.T) {
	grid := textGrid(
		"Relatório",
		"Quando|O que|Quanto",
		"10/03/2024|Pix|10,00",
	)

	sheet, err := fileutil.BuildSheet("generic", grid)
	if err != nil {
		t.Fatalf("Expected sheet, got error: %v", err)
	}

	if !sheet.HasColumns("quando", "o que", "quanto") {
		t.Errorf("Expected fallback header, got %v", sheet.Header)
	}
}

func TestBuildSheetDuplicateAndBlankHeaders(t *testing.T) {
	grid := textGrid(
		"Data||Valor|Valor",
		"10/03/2024|x|1,00|2,00",
	)

	sheet, err := fileutil.BuildSheet("dups", grid)
	if err != nil {
		t.Fatalf("Expected sheet, got error: %v", err)
	}

	want := []string{"data", "column 2", "valor", "valor #2"}
	for i, key := range want {
		if sheet.Header[i] != key {
			t.Errorf("Expected header %d to be %q, got %q", i, key, sheet.Header[i])
		}
	}

	row := sheet.Rows[0]
	if got := row.Text("valor #2"); got != "2,00" {
		t.Errorf("Expected second valor column '2,00', got %q", got)
	}
}

func TestRowLookup(t *testing.T) {
	row := fileutil.NewRow(7, map[string]fileutil.Cell{
		"Histórico": fileutil.TextCell("  PIX ENVIADO  "),
		"Memo":      fileutil.TextCell(""),
		"Valor":     fileutil.NumberCell(-10.5),
	})

	if got := row.Text("descricao", "historico"); got != "PIX ENVIADO" {
		t.Errorf("Expected synonym lookup to find 'PIX ENVIADO', got %q", got)
	}
	if _, ok := row.Get("memo"); ok {
		t.Errorf("Expected blank memo to be treated as missing")
	}
	if !row.Has("MEMO") {
		t.Errorf("Expected memo column to exist")
	}

	c, ok := row.Get("valor")
	if !ok {
		t.Fatalf("Expected valor to be present")
	}
	if v, isFloat := c.Value().(float64); !isFloat || v != -10.5 {
		t.Errorf("Expected float value -10.5, got %v", c.Value())
	}
	if row.Line != 7 {
		t.Errorf("Expected line 7, got %d", row.Line)
	}
}
