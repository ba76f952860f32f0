package ingest

import (
	"errors"
	"strings"
	"testing"
)

const sampleCSV = `Address,Latitude,Longitude,Price,Sale Date,Sqft,Property Type
1 Main St,40.0,-75.0,500000,2024-01-15,1000,House
2 Oak Ave,,-75.1,600000,2024-02-10,1200,Condo
3 Elm Rd,40.2,-75.2,700000,2024-02-20,1500,House
`

func TestCSVSampleDocument(t *testing.T) {
	res, err := CSV(sampleCSV)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Records))
	}
	if res.RowCount != 3 {
		t.Errorf("RowCount = %d, want 3", res.RowCount)
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("got %d rejections, want 1", len(res.Rejected))
	}
	if res.Rejected[0].RowIndex != 1 || !errors.Is(res.Rejected[0].Reason, ErrMissingLatitude) {
		t.Errorf("rejection = %+v, want row 1 missing latitude", res.Rejected[0])
	}
	// IDs keep the pre-rejection row positions.
	if res.Records[0].ID != "0" || res.Records[1].ID != "2" {
		t.Errorf("IDs = %q, %q; want 0, 2", res.Records[0].ID, res.Records[1].ID)
	}
	if res.Records[0].Address != "1 Main St" || res.Records[1].Address != "3 Elm Rd" {
		t.Errorf("unexpected record order: %q, %q", res.Records[0].Address, res.Records[1].Address)
	}
	if res.RawText != sampleCSV {
		t.Errorf("RawText not preserved")
	}
}

func TestCSVNoRecognizedColumns(t *testing.T) {
	_, err := CSV("not,a\nvalid")
	if !errors.Is(err, ErrNoValidRows) {
		t.Errorf("err = %v, want ErrNoValidRows", err)
	}
	if err == nil || err.Error() != "no valid rows" {
		t.Errorf("message = %v, want %q", err, "no valid rows")
	}
}

func TestCSVEmptyDocument(t *testing.T) {
	for _, raw := range []string{"", "\n\n"} {
		if _, err := CSV(raw); !errors.Is(err, ErrNoValidRows) {
			t.Errorf("CSV(%q) err = %v, want ErrNoValidRows", raw, err)
		}
	}
}

func TestCSVHeaderOnly(t *testing.T) {
	_, err := CSV("Address,Latitude,Longitude,Price,Sale Date\n")
	if !errors.Is(err, ErrNoValidRows) {
		t.Errorf("err = %v, want ErrNoValidRows", err)
	}
}

func TestCSVMalformed(t *testing.T) {
	// An unterminated quote cannot be tokenized.
	_, err := CSV("Address,Latitude,Longitude,Price,Sale Date\n\"1 Main St,40.0,-75.0,500000,2024-01-15\n")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
	if err == nil || !strings.HasPrefix(err.Error(), "malformed document") {
		t.Errorf("message = %v, want prefix %q", err, "malformed document")
	}
}

func TestCSVQuotedFields(t *testing.T) {
	raw := "Address,Latitude,Longitude,Price,Sale Date\n" +
		`"12 Elm St, Apt 4",40.1,-75.3,450000,2024-03-01` + "\n"
	res, err := CSV(raw)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if res.Records[0].Address != "12 Elm St, Apt 4" {
		t.Errorf("Address = %q", res.Records[0].Address)
	}
}

func TestCSVShortRows(t *testing.T) {
	// Rows with fewer fields than the header read as empty cells, which
	// here drops the row for missing price.
	raw := "Address,Latitude,Longitude,Price,Sale Date\n" +
		"1 Main St,40.0,-75.0,500000,2024-01-15\n" +
		"2 Oak Ave,40.1\n"
	res, err := CSV(raw)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if len(res.Records) != 1 || len(res.Rejected) != 1 {
		t.Errorf("records = %d, rejected = %d; want 1, 1", len(res.Records), len(res.Rejected))
	}
}

func TestCSVBlankLinesSkipped(t *testing.T) {
	raw := "Address,Latitude,Longitude,Price,Sale Date\n\n" +
		"1 Main St,40.0,-75.0,500000,2024-01-15\n\n"
	res, err := CSV(raw)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if res.Records[0].ID != "0" {
		t.Errorf("ID = %q, want 0", res.Records[0].ID)
	}
}
