package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/auditpro/document-auditor/dto"
	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedLedgerFormat = errors.New("Unsupported file format. Please upload CSV or Excel (.xlsx, .xls).")
	ErrMissingHeader           = errors.New("header row is missing")
	ErrNoWorksheet             = errors.New("workbook has no worksheets")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseLedger dispatches on the file extension and returns the data rows of
// a CSV file or of the first worksheet of a workbook.
func ParseLedger(filename string, data []byte) ([]dto.Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err := ParseCSV(data)
		if err != nil {
			return nil, fmt.Errorf("Error parsing CSV: %w", err)
		}
		return rows, nil
	case ".xlsx":
		rows, err := ParseXLSX(data)
		if err != nil {
			return nil, fmt.Errorf("Error parsing Excel file: %w", err)
		}
		return rows, nil
	case ".xls":
		rows, err := ParseXLS(data)
		if err != nil {
			return nil, fmt.Errorf("Error parsing Excel file: %w", err)
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedLedgerFormat
	}
}

// ParseCSV reads a comma separated file with a mandatory header row. Every
// header column is present on every row; short rows are padded with "".
// CSV carries no cell types, so values are kept exactly as written.
func ParseCSV(data []byte) ([]dto.Row, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, err
	}
	columns := uniqueHeaders(header)

	var rows []dto.Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, dto.NewRow(line, columns, record))
	}
	return rows, nil
}

// ParseXLSX reads the first worksheet of an OOXML workbook.
func ParseXLSX(data []byte) ([]dto.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}
	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return rowsFromGrid(grid, func(r, c int) bool {
		cell, err := excelize.CoordinatesToCellName(c+1, r+1)
		if err != nil {
			return false
		}
		typ, err := f.GetCellType(sheets[0], cell)
		if err != nil {
			return false
		}
		// numbers are written without a type attribute as often as with "n"
		return typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset
	})
}

// ParseXLS reads the first worksheet of a legacy BIFF workbook.
func ParseXLS(data []byte) (rows []dto.Row, err error) {
	// extrame/xls panics on some truncated streams.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoWorksheet
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	// extrame/xls already prints numbers in plain decimal form
	return rowsFromGrid(grid, nil)
}

// xlsRow returns nil for rows the sheet holds no record for.
// WorkSheet.Row dereferences the missing entry instead.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// rowsFromGrid turns a worksheet grid into rows the way a sheet-to-JSON
// conversion does: the first non-blank row is the header, blank rows are
// dropped and empty cells are left out of the row. Cells that numeric
// reports as numbers are passed through CanonicalNumber; text cells and
// identifier columns keep their value as written.
func rowsFromGrid(grid [][]string, numeric func(row, col int) bool) ([]dto.Row, error) {
	headerIdx := -1
	for i, cells := range grid {
		if !isBlank(cells) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrMissingHeader
	}
	columns := uniqueHeaders(grid[headerIdx])

	var rows []dto.Row
	for i := headerIdx + 1; i < len(grid); i++ {
		cells := grid[i]
		if isBlank(cells) {
			continue
		}
		row := dto.Row{Line: i + 1, Values: make(map[string]string)}
		for c, value := range cells {
			if c >= len(columns) || strings.TrimSpace(value) == "" {
				continue
			}
			if numeric != nil && !isIdentifierColumn(columns[c]) && numeric(i, c) {
				value = CanonicalNumber(value)
			}
			row.Set(columns[c], value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CanonicalNumber rewrites numbers in exponent notation ("1.0220004E+06")
// as plain decimals ("1022000.4"). Anything else is returned unchanged.
func CanonicalNumber(value string) string {
	trimmed := strings.TrimSpace(value)
	if !strings.ContainsAny(trimmed, "eE") {
		return value
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return value
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return value
	}
	return d.String()
}

// uniqueHeaders trims header names, names empty headers __EMPTY, __EMPTY_1, ...
// and suffixes duplicates with _1, _2, ...
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(strings.TrimPrefix(h, string(utf8BOM)))
		if name == "" {
			name = "__EMPTY"
		}
		if _, dup := seen[name]; dup {
			base := name
			for n := seen[base] + 1; ; n++ {
				candidate := fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[candidate]; !taken {
					seen[base] = n
					name = candidate
					break
				}
			}
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

func isIdentifierColumn(column string) bool {
	return column == dto.ColumnInvoiceNo || column == dto.ColumnBENo
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
