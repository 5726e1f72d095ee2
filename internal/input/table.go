package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoURLs     = errors.New("no product URLs found")
	ErrEmptyTable = errors.New("table has no rows")
)

// ReadTable reads a spreadsheet upload. Files ending in .xlsx are read from
// their first sheet, everything else is parsed as CSV.
func ReadTable(name string, r io.Reader) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return readXLSX(r)
	}
	return readCSV(r)
}

// ReadURLs returns the first column of every row after the header, skipping
// blank cells. Duplicates are kept.
func ReadURLs(name string, r io.Reader) ([]string, error) {
	rows, err := ReadTable(name, r)
	if err != nil {
		return nil, err
	}

	var urls []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if u := strings.TrimSpace(row[0]); u != "" {
			urls = append(urls, u)
		}
	}

	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	return urls, nil
}

// ReadColumns returns the header row of a template file.
func ReadColumns(name string, r io.Reader) ([]string, error) {
	rows, err := ReadTable(name, r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	columns := make([]string, 0, len(rows[0]))
	for _, c := range rows[0] {
		columns = append(columns, strings.TrimSpace(c))
	}
	return columns, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return rows, nil
}
