package grade

import (
	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
)

type (
	Letter   string
	Severity string
)

// Letters
const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
	LetterF Letter = "F"
)

// Severities (presentation hints)
const (
	SeverityGood Severity = "good"
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warn"
	SeverityBad  Severity = "bad"
)

var (
	AllLetters = []Letter{LetterA, LetterB, LetterC, LetterD, LetterF}

	ErrInvalidInput = errors.New("invalid input")

	letterPoints = map[Letter]float64{
		LetterA: 4.0,
		LetterB: 3.0,
		LetterC: 2.0,
		LetterD: 1.0,
		LetterF: 0.0,
	}
)

// Points returns the 4.0-scale value of the letter.
func (l Letter) Points() float64 {
	return letterPoints[l]
}

// Classify maps a percentage to its letter. Lower bounds are inclusive.
func Classify(percentage float64) Letter {
	switch {
	case percentage >= 90:
		return LetterA
	case percentage >= 80:
		return LetterB
	case percentage >= 70:
		return LetterC
	case percentage >= 60:
		return LetterD
	default:
		return LetterF
	}
}

// Percentage returns score/maxScore*100. maxScore must be positive.
func Percentage(score, maxScore float64) (float64, error) {
	if maxScore <= 0 {
		return 0, core.NewValidationError(
			errors.Wrap(ErrInvalidInput, "max score must be greater than 0"),
			core.FieldError{Field: "max_score", Error: "max score must be greater than 0"},
		)
	}
	return score / maxScore * 100, nil
}

func ColorBand(percentage float64) Severity {
	switch {
	case percentage >= 80:
		return SeverityGood
	case percentage >= 70:
		return SeverityOK
	case percentage >= 60:
		return SeverityWarn
	default:
		return SeverityBad
	}
}

// Weighted is a percentage along with its weight in an aggregate.
type Weighted struct {
	Percentage float64
	Weight     float64
}

// AggregateGPA returns the weighted mean of the records' letter points, or 0 when there is nothing to weigh.
func AggregateGPA(records []Weighted) float64 {
	var points, weights float64
	for _, rec := range records {
		points += Classify(rec.Percentage).Points() * rec.Weight
		weights += rec.Weight
	}
	if weights == 0 {
		return 0
	}
	return points / weights
}
