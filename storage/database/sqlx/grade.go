package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/grade"
)

type gradeRow struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	Subject        string    `db:"subject"`
	AssessmentType string    `db:"assessment_type"`
	Score          float64   `db:"score"`
	MaxScore       float64   `db:"max_score"`
	Percentage     float64   `db:"percentage"`
	GradeLetter    string    `db:"grade_letter"`
	Weight         float64   `db:"weight"`
	AssessmentDate time.Time `db:"assessment_date"`
	Feedback       string    `db:"feedback"`
	InstructorName string    `db:"instructor_name"`
	CreatedAt      time.Time `db:"created_at"`
}

type gradeRepository struct {
	exec core.DBExecutor
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(exec core.DBExecutor) *gradeRepository {
	return &gradeRepository{exec: exec}
}

func (repo gradeRepository) boil(g grade.Grade) gradeRow {
	return gradeRow{
		ID:             g.ID,
		UserID:         g.UserID,
		Subject:        g.Subject,
		AssessmentType: string(g.AssessmentType),
		Score:          g.Score,
		MaxScore:       g.MaxScore,
		Percentage:     g.Percentage,
		GradeLetter:    string(g.Letter),
		Weight:         g.Weight,
		AssessmentDate: g.AssessmentDate.UTC(),
		Feedback:       g.Feedback,
		InstructorName: g.InstructorName,
		CreatedAt:      g.CreatedAt.UTC(),
	}
}

func (repo gradeRepository) unboil(row gradeRow) grade.Grade {
	return grade.Grade{
		ID:             row.ID,
		UserID:         row.UserID,
		Subject:        row.Subject,
		AssessmentType: grade.AssessmentType(row.AssessmentType),
		Score:          row.Score,
		MaxScore:       row.MaxScore,
		Percentage:     row.Percentage,
		Letter:         grade.Letter(row.GradeLetter),
		Weight:         row.Weight,
		AssessmentDate: row.AssessmentDate.UTC(),
		Feedback:       row.Feedback,
		InstructorName: row.InstructorName,
		CreatedAt:      row.CreatedAt.UTC(),
	}
}

func (repo gradeRepository) InsertGrade(ctx context.Context, g grade.Grade, exec ...core.DBExecutor) (grade.Grade, error) {
	row := repo.boil(g)
	q := `INSERT INTO grades (user_id, subject, assessment_type, score, max_score, percentage, grade_letter, weight,
		assessment_date, feedback, instructor_name, created_at)
		VALUES (:user_id, :subject, :assessment_type, :score, :max_score, :percentage, :grade_letter, :weight,
		:assessment_date, :feedback, :instructor_name, :created_at)
		RETURNING id`

	exe := getExec(repo.exec, exec)
	q, args, err := sqlx.Named(q, row)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "binding grade")
	}
	if err = exe.GetContext(ctx, &row.ID, exe.Rebind(q), args...); err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return repo.unboil(row), nil
}

func (repo gradeRepository) QueryGrades(ctx context.Context, userID int64, exec ...core.DBExecutor) ([]grade.Grade, error) {
	q := `SELECT id, user_id, subject, assessment_type, score, max_score, percentage, grade_letter, weight,
		assessment_date, feedback, instructor_name, created_at
		FROM grades WHERE user_id = $1 ORDER BY assessment_date DESC, id DESC`

	var rows []gradeRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, repo.unboil(r))
	}
	return grades, nil
}

func (repo gradeRepository) GradeStats(ctx context.Context, exec ...core.DBExecutor) (grade.Stats, error) {
	q := "SELECT COUNT(*) AS total, AVG(percentage) AS average_percentage FROM grades"

	var row struct {
		Total             int          `db:"total"`
		AveragePercentage null.Float64 `db:"average_percentage"`
	}
	if err := getExec(repo.exec, exec).GetContext(ctx, &row, q); err != nil {
		return grade.Stats{}, errors.Wrap(err, "computing grade stats")
	}
	return grade.Stats{Total: row.Total, AveragePercentage: row.AveragePercentage.Float64}, nil
}
