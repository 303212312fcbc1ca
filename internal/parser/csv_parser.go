package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/user/bimmer_log_analyzer_go/internal/apperr"
)

// NewReader returns a CSV reader over r that drops a leading UTF-8 or UTF-16
// byte-order mark. Records may have any number of fields.
func NewReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// ReadHeader returns the first record of the CSV file at path.
func ReadHeader(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperr.IO("open", path, err)
	}
	defer file.Close()

	header, err := NewReader(file).Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.ErrEmptyInput
	}
	if err != nil {
		return nil, apperr.IO("read", path, err)
	}
	return header, nil
}

// ParseLogTable reads the whole CSV file at path into a Table. The first
// record is the header; blank lines are skipped.
func ParseLogTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperr.IO("open", path, err)
	}
	defer file.Close()

	table, err := ReadTable(file)
	if err != nil && !errors.Is(err, apperr.ErrEmptyInput) {
		return nil, apperr.IO("read", path, err)
	}
	return table, err
}

// ReadTable reads CSV data from r into a Table.
func ReadTable(r io.Reader) (*Table, error) {
	reader := NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	table := newTable(header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV data: %w", err)
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			table.ParseErrors = append(table.ParseErrors, fmt.Sprintf("Warning: line %d has %d fields, expected %d. Extra fields ignored.", line, len(record), len(header)))
		}
		table.appendRow(record)
	}
	return table, nil
}

// uniqueName returns name, or name.N for the first N that is not yet taken.
func uniqueName(name string, taken map[string]int) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for n := 1; ; n++ {
		candidate := name + "." + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
