package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"chayo-ai/backend/onboarding"
)

func TestOnboardingWorkbook(t *testing.T) {
	org := uuid.New()
	name := "Acme"
	fields := []onboarding.Field{
		{OrganizationID: org, Name: onboarding.FieldBusinessName, Value: &name, UpdatedAt: time.Unix(0, 0)},
		{OrganizationID: org, Name: onboarding.FieldGoals},
	}
	p := onboarding.Progress{TotalQuestions: 2, AnsweredQuestions: 1, CurrentStage: onboarding.Stage1}

	b, err := OnboardingWorkbook(fields, p)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(fieldsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Field", "Value", "Answered", "Updated At"}, rows[0])
	assert.Equal(t, "business_name", rows[1][0])
	assert.Equal(t, "Acme", rows[1][1])
	assert.Equal(t, "TRUE", rows[1][2])
	assert.Equal(t, "FALSE", rows[2][2])

	summary, err := f.GetRows(progressSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"current_stage", "stage_1"}, summary[3])
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "onboarding-abc-60.xlsx", ExportFilename("abc", time.Unix(60, 0)))
}
