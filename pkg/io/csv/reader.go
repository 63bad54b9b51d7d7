// Package csv provides CSV file reading for bid records.
package csv

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/securetender/bidguard/pkg/features"
	bidio "github.com/securetender/bidguard/pkg/io"
)

var _ bidio.Reader = (*Reader)(nil)

// defaultColumns is the assumed column order when the file has no header row.
var defaultColumns = []string{
	"tender_id", "company_name", "contact_email", "bid_amount", "proposal", "submitted_at",
}

// Reader reads bid records from CSV files.
type Reader struct {
	file      *os.File
	reader    *csv.Reader
	hasHeader bool
	headers   []string
	columns   map[string]int
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates whether the CSV has a header row.
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// NewReader creates a new CSV reader.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:      file,
		reader:    csv.NewReader(file),
		hasHeader: true,
	}
	r.reader.FieldsPerRecord = -1

	for _, opt := range opts {
		opt(r)
	}

	headers := defaultColumns
	if r.hasHeader {
		headers, err = r.reader.Read()
		if err != nil {
			file.Close()
			return nil, err
		}
	}
	r.headers = headers
	r.columns = make(map[string]int, len(headers))
	for i, h := range headers {
		r.columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := r.columns["bid_amount"]; !ok {
		file.Close()
		return nil, errors.New("missing bid_amount column")
	}

	return r, nil
}

// Headers returns the column headers.
func (r *Reader) Headers() []string {
	return r.headers
}

// Read returns all bid records. Malformed rows are skipped.
func (r *Reader) Read() ([]features.Record, error) {
	var records []features.Record

	for {
		row, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec, err := r.parseRow(row)
		if err != nil {
			continue // Skip malformed rows
		}
		records = append(records, rec)
	}

	return records, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// parseRow converts a CSV row into a bid record.
func (r *Reader) parseRow(row []string) (features.Record, error) {
	if len(row) == 0 {
		return features.Record{}, errors.New("empty row")
	}

	amountField := r.field(row, "bid_amount")
	amount, err := strconv.ParseFloat(amountField, 64)
	if err != nil {
		return features.Record{}, err
	}
	if amount <= 0 {
		return features.Record{}, errors.New("bid amount must be positive")
	}

	// tender_id is optional; missing or bad values map to zero
	tenderID, _ := strconv.ParseInt(r.field(row, "tender_id"), 10, 64)

	return features.Record{
		TenderID:     tenderID,
		CompanyName:  r.field(row, "company_name"),
		ContactEmail: r.field(row, "contact_email"),
		BidAmount:    amount,
		Proposal:     r.field(row, "proposal"),
		SubmittedAt:  r.field(row, "submitted_at"),
	}, nil
}

func (r *Reader) field(row []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
