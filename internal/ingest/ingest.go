package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/propvisor/propvisor-cli/internal/property"
)

// Terminal ingestion errors. A failed ingest never replaces previously
// loaded data; callers keep whatever dataset they had.
var (
	ErrMalformed   = errors.New("malformed document")
	ErrNoValidRows = errors.New("no valid rows")
)

// Rejection records why one data row was dropped. RowIndex is the row's
// 0-based position in the parsed sequence.
type Rejection struct {
	RowIndex int
	Reason   error
}

// Result is a successful ingestion: the normalized records in file order,
// the original raw text (the summary requester consumes it downstream), and
// the per-row accounting.
type Result struct {
	Records  []property.Sale
	RawText  string
	RowCount int
	Rejected []Rejection
}

// CSV parses raw comma-separated text into validated sale records.
//
// The first line is the header row; matching is delegated to NormalizeRow.
// Blank lines are skipped and rows may carry fewer fields than the header
// (missing cells read as empty). Rows that fail normalization are dropped
// silently and only counted.
//
// Fails with ErrMalformed when the text cannot be tokenized at all, and with
// ErrNoValidRows when the document parses but zero rows survive.
func CSV(rawText string) (*Result, error) {
	r := csv.NewReader(strings.NewReader(rawText))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoValidRows
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	res := &Result{RawText: rawText}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		rowIndex := res.RowCount
		res.RowCount++

		raw := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				raw[name] = rec[i]
			} else {
				raw[name] = ""
			}
		}
		sale, err := NormalizeRow(raw, rowIndex)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{RowIndex: rowIndex, Reason: err})
			continue
		}
		res.Records = append(res.Records, sale)
	}

	if len(res.Records) == 0 {
		return nil, ErrNoValidRows
	}
	return res, nil
}
