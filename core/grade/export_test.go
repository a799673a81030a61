package grade

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSpreadsheet(t *testing.T) {
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	grades := []Grade{
		{
			Subject: "Mathematics", AssessmentType: AssessmentFinal, Score: 45, MaxScore: 50,
			Percentage: 90, Letter: LetterA, Weight: 2, AssessmentDate: date, InstructorName: "Dr. Smith",
		},
		{
			Subject: "Physics", AssessmentType: AssessmentQuiz, Score: 13, MaxScore: 20,
			Percentage: 65, Letter: LetterD, Weight: 1, AssessmentDate: date.AddDate(0, 0, -7), Feedback: "Revise optics",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSpreadsheet(&buf, grades, Summarize(grades)))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{gradesSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(gradesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Subject", rows[0][0])
	assert.Equal(t, "Feedback", rows[0][9])
	assert.Equal(t, []string{"Mathematics", "final", "45", "50", "90", "A", "2", "2024-03-05", "Dr. Smith"}, rows[1])
	assert.Equal(t, "Revise optics", rows[2][9])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 3)
	assert.Equal(t, []string{"Grades", "2"}, summary[0])
	assert.Equal(t, []string{"GPA", "3"}, summary[1])
}
