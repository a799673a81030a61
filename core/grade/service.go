package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		InsertGrade(ctx context.Context, g Grade, exec ...core.DBExecutor) (Grade, error)
		// QueryGrades returns the user's grades, latest assessment first.
		QueryGrades(ctx context.Context, userID int64, exec ...core.DBExecutor) ([]Grade, error)
		GradeStats(ctx context.Context, exec ...core.DBExecutor) (Stats, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create records a new grade for userID. ng is expected to be validated.
func (svc *Service) Create(ctx context.Context, userID int64, ng NewGrade) (Grade, error) {
	pct, err := Percentage(*ng.Score, ng.maxScore())
	if err != nil {
		return Grade{}, err
	}
	date, err := core.ParseDate(ng.AssessmentDate)
	if err != nil {
		return Grade{}, core.NewValidationError(
			errors.Wrap(ErrInvalidInput, "invalid assessment date"),
			core.FieldError{Field: "assessment_date", Error: "assessment_date must be a valid date (" + core.DateLayouts + ")"},
		)
	}

	g := Grade{
		UserID:         userID,
		Subject:        ng.Subject,
		AssessmentType: AssessmentType(ng.AssessmentType),
		Score:          *ng.Score,
		MaxScore:       ng.maxScore(),
		Percentage:     pct,
		Letter:         Classify(pct),
		Weight:         ng.weight(),
		AssessmentDate: date,
		Feedback:       ng.Feedback,
		InstructorName: ng.InstructorName,
		CreatedAt:      NowFunc().UTC(),
	}
	g, err = svc.repo.InsertGrade(ctx, g)
	if err != nil {
		return Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (svc *Service) QueryForUser(ctx context.Context, userID int64) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, userID)
}

// Summary returns the user's grades along with their aggregate.
func (svc *Service) Summary(ctx context.Context, userID int64) ([]Grade, Summary, error) {
	grades, err := svc.repo.QueryGrades(ctx, userID)
	if err != nil {
		return nil, Summary{}, errors.Wrap(err, "querying grades")
	}
	return grades, Summarize(grades), nil
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	return svc.repo.GradeStats(ctx)
}

// Summarize aggregates grades. The average percentage is unweighted.
func Summarize(grades []Grade) Summary {
	sum := Summary{
		Count:        len(grades),
		Distribution: make(map[Letter]int, len(AllLetters)),
	}
	for _, l := range AllLetters {
		sum.Distribution[l] = 0
	}
	if len(grades) == 0 {
		return sum
	}

	records := make([]Weighted, 0, len(grades))
	var total float64
	for _, g := range grades {
		records = append(records, Weighted{Percentage: g.Percentage, Weight: g.Weight})
		total += g.Percentage
		sum.Distribution[Classify(g.Percentage)]++
	}
	sum.GPA = AggregateGPA(records)
	sum.AveragePercentage = total / float64(len(grades))
	return sum
}
