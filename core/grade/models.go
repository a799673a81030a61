package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studash/dashboard/core"
)

type AssessmentType string

// Assessment types
const (
	AssessmentQuiz          AssessmentType = "quiz"
	AssessmentAssignment    AssessmentType = "assignment"
	AssessmentMidTerm       AssessmentType = "mid-term"
	AssessmentFinal         AssessmentType = "final"
	AssessmentProject       AssessmentType = "project"
	AssessmentParticipation AssessmentType = "participation"
)

const (
	defaultMaxScore = 100.0
	defaultWeight   = 1.0
)

var AllAssessmentTypes = []AssessmentType{
	AssessmentQuiz, AssessmentAssignment, AssessmentMidTerm,
	AssessmentFinal, AssessmentProject, AssessmentParticipation,
}

type Grade struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"user_id"`
	Subject        string         `json:"subject"`
	AssessmentType AssessmentType `json:"assessment_type"`
	Score          float64        `json:"score"`
	MaxScore       float64        `json:"max_score"`
	Percentage     float64        `json:"percentage"`
	Letter         Letter         `json:"grade_letter"`
	Weight         float64        `json:"weight"`
	AssessmentDate time.Time      `json:"assessment_date"`
	Feedback       string         `json:"feedback"`
	InstructorName string         `json:"instructor_name"`
	CreatedAt      time.Time      `json:"created_at"` // UTC
}

// Severity is the presentation band of the grade's percentage.
func (g Grade) Severity() Severity {
	return ColorBand(g.Percentage)
}

// NewGrade contains information needed to record a new Grade.
type NewGrade struct {
	Subject        string   `json:"subject" validate:"required,notblank,max=100"`
	AssessmentType string   `json:"assessment_type" validate:"required,oneof=quiz assignment mid-term final project participation"`
	Score          *float64 `json:"score" validate:"required,gte=0"`
	MaxScore       *float64 `json:"max_score"`
	Weight         *float64 `json:"weight" validate:"omitempty,gt=0"`
	AssessmentDate string   `json:"assessment_date" validate:"required,datestr"`
	Feedback       string   `json:"feedback" validate:"max=1000"`
	InstructorName string   `json:"instructor_name" validate:"max=100"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Subject = core.CleanString(ng.Subject)
	ng.AssessmentType = core.CleanString(ng.AssessmentType, true /* lower */)
	ng.AssessmentDate = core.CleanString(ng.AssessmentDate)
	ng.Feedback = core.CleanString(ng.Feedback)
	ng.InstructorName = core.CleanString(ng.InstructorName)
	return validate.Struct(ng)
}

func (ng NewGrade) maxScore() float64 {
	if ng.MaxScore == nil {
		return defaultMaxScore
	}
	return *ng.MaxScore
}

func (ng NewGrade) weight() float64 {
	if ng.Weight == nil {
		return defaultWeight
	}
	return *ng.Weight
}

// Summary aggregates a student's grades.
type Summary struct {
	Count             int            `json:"count"`
	GPA               float64        `json:"gpa"`
	AveragePercentage float64        `json:"average_percentage"`
	Distribution      map[Letter]int `json:"distribution"`
}

// Stats holds the grade figures shown on the admin dashboard.
type Stats struct {
	Total             int     `json:"total"`
	AveragePercentage float64 `json:"average_percentage"`
}
