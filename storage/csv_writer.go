package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// Table is a rendered CSV: a header and rows of equal width.
type Table struct {
	Header []string
	Rows   [][]string
}

// CSVWriter writes a Table to any io.Writer, header first.
type CSVWriter struct {
	writer *csv.Writer
	width  int
}

// NewCSVWriter writes the header row and returns a writer for the data rows.
func NewCSVWriter(w io.Writer, header []string) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	return &CSVWriter{writer: cw, width: len(header)}, nil
}

// WriteRows writes the rows and flushes. Every row must match the header width.
func (c *CSVWriter) WriteRows(rows [][]string) error {
	for i, row := range rows {
		if len(row) != c.width {
			return fmt.Errorf("csv: row %d has %d cells, header has %d", i+1, len(row), c.width)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i+1, err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Encode renders the whole table in memory.
func (t Table) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf, t.Header)
	if err != nil {
		return nil, err
	}
	if err := w.WriteRows(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV replaces the file at path with the table. Nothing is written if
// rendering fails.
func WriteCSV(path string, t Table) error {
	data, err := t.Encode()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// ReadCSV loads a CSV file written by WriteCSV.
func ReadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("csv: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("csv: %s has no header", path)
	}
	return Table{Header: records[0], Rows: records[1:]}, nil
}

// SaveCSV writes the table to processed/name and a dated copy in backups/.
// It returns the latest path.
func (l Layout) SaveCSV(name string, t Table, now time.Time) (string, error) {
	data, err := t.Encode()
	if err != nil {
		return "", err
	}
	latest := l.Processed(name)
	if err := writeFileAtomic(latest, data); err != nil {
		return "", err
	}
	if err := writeFileAtomic(l.Backup(DatedName(name, now)), data); err != nil {
		return latest, err
	}
	return latest, nil
}

// Column returns the index of name in the header, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}
