package utils

import (
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"chayo-ai/backend/onboarding"
)

const (
	fieldsSheet   = "Business Info"
	progressSheet = "Progress"
)

// OnboardingWorkbook renders the organization's fields and progress as XLSX.
func OnboardingWorkbook(fields []onboarding.Field, p onboarding.Progress) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", fieldsSheet); err != nil {
		return nil, err
	}
	rows := [][]interface{}{{"Field", "Value", "Answered", "Updated At"}}
	for _, fl := range fields {
		val := ""
		if fl.Value != nil {
			val = *fl.Value
		}
		rows = append(rows, []interface{}{string(fl.Name), val, fl.IsAnswered(), fl.UpdatedAt.UTC().Format(time.RFC3339)})
	}
	if err := writeRows(f, fieldsSheet, rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(progressSheet); err != nil {
		return nil, err
	}
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"total_questions", p.TotalQuestions},
		{"answered_questions", p.AnsweredQuestions},
		{"current_stage", string(p.CurrentStage)},
		{"stage1_completed", p.Stage1Completed},
		{"stage2_completed", p.Stage2Completed},
		{"stage3_completed", p.Stage3Completed},
		{"is_completed", p.IsCompleted},
	}
	if err := writeRows(f, progressSheet, summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := r
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", float64(24))
}

// ExportFilename names the download for an organization.
func ExportFilename(orgID string, at time.Time) string {
	return "onboarding-" + orgID + "-" + strconv.FormatInt(at.Unix(), 10) + ".xlsx"
}
