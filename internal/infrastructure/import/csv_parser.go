package csvimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads a person CSV: UTF-8 only, optional BOM, comma-delimited,
// first row is the header. Tolerates ragged rows (missing trailing columns
// become empty values). File size is capped by the processor before the
// parser ever sees the content, so the whole file is read up front.
type CSVParser struct {
	reader     *csv.Reader
	headers    []string
	headerIdx  map[string]int
	currentRow int
}

// NewCSVParser reads the full content from r and prepares it for parsing.
// Returns ErrEmptyFile for empty input and ErrInvalidEncoding for anything
// that is not valid UTF-8.
func NewCSVParser(r io.Reader) (*CSVParser, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content = bytes.TrimPrefix(content, utf8BOM)
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(bytes.NewReader(content))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	return &CSVParser{
		reader:    cr,
		headerIdx: make(map[string]int),
	}, nil
}

// ParseHeader reads the header row and builds the column lookup.
// Header names are trimmed; the header row counts as row 1.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.TrimSpace(h)
		p.headers[i] = name
		p.headerIdx[name] = i
	}
	p.currentRow = 1
	return nil
}

// Headers returns the parsed header names in file order
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader reports whether a column with the given name exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerIdx[name]
	return ok
}

// ValidateHeaders returns the required headers that are absent from the file
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one parsed CSV data row keyed by header name. LineNumber is the
// 1-indexed position in the file including the header, so the first data row
// is line 2; it is what row errors report back to the user.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the trimmed value for a column, or "" when the column is absent
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty reports whether every value in the row is empty
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row. Returns io.EOF when the file is exhausted.
// Short rows are padded with empty values; extra unnamed columns are dropped.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// ReadAllRows reads the remaining data rows, skipping fully empty ones
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// CurrentRow returns the file line of the last row read (header is 1)
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}
