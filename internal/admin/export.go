package admin

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"submitted_at", "name", "email", "phone", "branch",
	"partner_name", "partner_email", "partner_phone",
	"total_points", "status", "answers",
}

func exportRecord(s SubmissionRow) []string {
	return []string{
		s.SubmittedAt.UTC().Format(time.RFC3339),
		s.Name,
		s.Email,
		s.Phone,
		s.Branch,
		deref(s.PartnerName),
		deref(s.PartnerEmail),
		deref(s.PartnerPhone),
		strconv.Itoa(s.TotalPoints),
		s.Status,
		string(s.Answers),
	}
}

// BuildCSV renders submissions as a CSV document.
func BuildCSV(rows []SubmissionRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, s := range rows {
		if err := w.Write(exportRecord(s)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildXLSX renders submissions as an Excel workbook.
func BuildXLSX(rows []SubmissionRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}
	for i, s := range rows {
		record := exportRecord(s)
		for col, val := range record {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
