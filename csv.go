package metalsim

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadPrices reads a spot price history from CSV.
//
// Expected header: date,gold,silver,platinum,palladium (column order free,
// matched by name). Prices are per troy ounce. Blank cells are gaps,
// resolved by the price table's fill pass. Bank and LBMA exports often ship
// as UTF-16; the byte order mark is detected and decoded transparently.
func LoadPrices(r io.Reader) (*PriceTable, error) {
	reader := csv.NewReader(decodeBOM(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read price csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyPriceTable
	}

	// Map columns by header name.
	columns := make(map[int]Metal)
	dateCol := -1
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "date" {
			dateCol = i
			continue
		}
		if m, err := ParseMetal(name); err == nil {
			columns[i] = m
		}
	}
	if dateCol < 0 || len(columns) == 0 {
		return nil, fmt.Errorf("malformed price csv: want a 'date' column and one column per metal, got header %v", records[0])
	}

	rows := make([]PriceRow, 0, len(records)-1)
	for n, record := range records[1:] {
		if dateCol >= len(record) {
			continue
		}
		on, err := ParseDate(record[dateCol])
		if err != nil {
			return nil, fmt.Errorf("price csv line %d: %w", n+2, err)
		}
		row := PriceRow{Date: on, Ounce: make(map[Metal]float64)}
		for i, m := range columns {
			if i >= len(record) || strings.TrimSpace(record[i]) == "" {
				continue // gap, resolved by fill
			}
			price, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("price csv line %d: invalid %s price %q: %w", n+2, m, record[i], err)
			}
			row.Ounce[m] = price
		}
		rows = append(rows, row)
	}
	return NewPriceTable(rows)
}

// LoadInflation reads a year-indexed inflation table from CSV with columns
// year,value. The value may be a percentage or an index; values above 50
// are treated as an index and converted by index-100.
func LoadInflation(r io.Reader) (InflationTable, error) {
	reader := csv.NewReader(decodeBOM(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read inflation csv: %w", err)
	}

	table := make(InflationTable)
	for n, record := range records {
		if len(record) < 2 {
			continue
		}
		if n == 0 && strings.EqualFold(strings.TrimSpace(record[0]), "year") {
			continue // header
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("inflation csv line %d: invalid year %q: %w", n+1, record[0], err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("inflation csv line %d: invalid value %q: %w", n+1, record[1], err)
		}
		if value > 50 {
			value -= 100 // index form
		}
		table[year] = Percent(value)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("malformed inflation table: no rows")
	}
	return table, nil
}

// decodeBOM wraps r to transparently decode UTF-16 input when a byte order
// mark is present; plain UTF-8 passes through untouched.
func decodeBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, _ := br.Peek(2)
	if bytes.Equal(head, []byte{0xFF, 0xFE}) {
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	}
	if bytes.Equal(head, []byte{0xFE, 0xFF}) {
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	}
	return br
}
