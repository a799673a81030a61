package grade

import (
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	gradesSheet  = "Grades"
	summarySheet = "Summary"
	dateLayout   = "2006-01-02"
)

var gradesHeader = []interface{}{
	"Subject", "Assessment Type", "Score", "Max Score", "Percentage", "Grade",
	"Weight", "Assessment Date", "Instructor", "Feedback",
}

// WriteSpreadsheet writes grades and their summary as an xlsx workbook to w.
func WriteSpreadsheet(w io.Writer, grades []Grade, sum Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName(f.GetSheetName(0), gradesSheet)
	f.NewSheet(summarySheet)

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	// grades
	if err = f.SetSheetRow(gradesSheet, "A1", &gradesHeader); err != nil {
		return errors.Wrap(err, "writing grades header")
	}
	if err = f.SetRowStyle(gradesSheet, 1, 1, boldStyle); err != nil {
		return errors.Wrap(err, "styling grades header")
	}
	for i, g := range grades {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		row := []interface{}{
			g.Subject, string(g.AssessmentType), g.Score, g.MaxScore, round2(g.Percentage), string(g.Letter),
			g.Weight, g.AssessmentDate.Format(dateLayout), g.InstructorName, g.Feedback,
		}
		if err = f.SetSheetRow(gradesSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing grade row %d", i+2)
		}
	}
	if err = f.SetColWidth(gradesSheet, "A", "J", 16); err != nil {
		return errors.Wrap(err, "setting column width")
	}

	// summary
	summaryRows := [][]interface{}{
		{"Grades", sum.Count},
		{"GPA", round2(sum.GPA)},
		{"Average %", round2(sum.AveragePercentage)},
	}
	for _, l := range AllLetters {
		summaryRows = append(summaryRows, []interface{}{"Grade " + string(l), sum.Distribution[l]})
	}
	for i, row := range summaryRows {
		row := row
		if err = f.SetSheetRow(summarySheet, "A"+strconv.Itoa(i+1), &row); err != nil {
			return errors.Wrap(err, "writing summary row")
		}
	}

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
