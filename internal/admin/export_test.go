package admin

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func sampleRows() []SubmissionRow {
	partner := "Bo"
	return []SubmissionRow{
		{
			SessionID:   uuid.New(),
			SignageID:   "X",
			Name:        "Ana",
			Email:       "ana@example.com",
			Phone:       "5551234567",
			Branch:      "yes",
			PartnerName: &partner,
			Answers:     json.RawMessage(`{"q1":"Option B"}`),
			TotalPoints: 3,
			Status:      "submitted",
			SubmittedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			SessionID:   uuid.New(),
			SignageID:   "X",
			Name:        "Quote, Me",
			Email:       "q@example.com",
			Phone:       "5559876543",
			Answers:     json.RawMessage(`{}`),
			TotalPoints: 1,
			Status:      "submitted",
			SubmittedAt: time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
		},
	}
}

func TestBuildCSV(t *testing.T) {
	body, err := BuildCSV(sampleRows())
	if err != nil {
		t.Fatalf("BuildCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "submitted_at" || records[0][8] != "total_points" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][1] != "Ana" || records[1][5] != "Bo" || records[1][8] != "3" {
		t.Errorf("row 1 = %v", records[1])
	}
	// Comma in the name must survive CSV quoting.
	if records[2][1] != "Quote, Me" {
		t.Errorf("row 2 name = %q", records[2][1])
	}
}

func TestBuildCSVEmpty(t *testing.T) {
	body, err := BuildCSV(nil)
	if err != nil {
		t.Fatalf("BuildCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil || len(records) != 1 {
		t.Fatalf("empty export should be header only, got %v (%v)", records, err)
	}
}

func TestBuildXLSX(t *testing.T) {
	body, err := BuildXLSX(sampleRows())
	if err != nil {
		t.Fatalf("BuildXLSX: %v", err)
	}
	// XLSX files are zip archives; check the magic bytes.
	if len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Errorf("output does not look like a workbook (%d bytes)", len(body))
	}
}
