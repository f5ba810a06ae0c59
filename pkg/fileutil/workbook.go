package fileutil

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Format is the container format of a statement file
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat decides by file extension first, then by magic bytes
func DetectFormat(data []byte, fileName string) Format {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		// some portals serve xlsx with a legacy extension
		if bytes.HasPrefix(data, zipMagic) {
			return FormatXLSX
		}
		return FormatXLS
	case ".csv", ".txt":
		return FormatCSV
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	}

	return FormatCSV
}

// ReadWorkbook decodes the first worksheet holding data into a Sheet
func ReadWorkbook(data []byte, fileName string) (*Sheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoData
	}

	var (
		grid [][]Cell
		name string
		err  error
	)

	switch DetectFormat(data, fileName) {
	case FormatXLSX:
		grid, name, err = readXLSX(data)
	case FormatXLS:
		grid, name, err = readXLS(data)
	default:
		grid, err = readCSV(data)
		name = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	}
	if err != nil {
		return nil, err
	}

	return BuildSheet(name, grid)
}

func readXLSX(data []byte) ([][]Cell, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("opening xlsx workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, "", fmt.Errorf("reading sheet %s: %w", name, err)
		}

		grid := make([][]Cell, len(rows))
		for i, row := range rows {
			cells := make([]Cell, len(row))
			for j, raw := range row {
				cells[j] = xlsxCell(f, name, i, j, raw)
			}
			grid[i] = cells
		}

		if hasData(grid) {
			return grid, name, nil
		}
	}

	return nil, "", ErrNoData
}

// xlsxCell keeps number-typed cells numeric; excelize leaves the type unset
// for plain numbers
func xlsxCell(f *excelize.File, sheet string, row, col int, raw string) Cell {
	if raw == "" {
		return Cell{}
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return TextCell(raw)
	}

	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return TextCell(raw)
	}

	if typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return NumberCell(n)
		}
	}

	return TextCell(raw)
}

func readXLS(data []byte) ([][]Cell, string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("opening xls workbook: %w", err)
	}

	for _, sheet := range workbook.GetSheets() {
		var grid [][]Cell
		for _, row := range sheet.GetRows() {
			var cells []Cell
			for _, col := range row.GetCols() {
				cells = append(cells, xlsCell(col.GetString()))
			}
			grid = append(grid, cells)
		}

		if hasData(grid) {
			return grid, sheet.GetName(), nil
		}
	}

	return nil, "", ErrNoData
}

// xlsCell treats plain machine-formatted numbers as numeric; the legacy
// reader renders number records without locale formatting
func xlsCell(raw string) Cell {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cell{}
	}
	if !strings.Contains(raw, ",") {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return NumberCell(n)
		}
	}
	return TextCell(raw)
}

func hasData(grid [][]Cell) bool {
	for _, row := range grid {
		if !isBlankRow(row) {
			return true
		}
	}
	return false
}
