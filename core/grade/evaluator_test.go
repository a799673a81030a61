package grade

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studash/dashboard/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		pct  float64
		want Letter
	}{
		{pct: 150, want: LetterA},
		{pct: 100, want: LetterA},
		{pct: 90, want: LetterA},
		{pct: 89.999, want: LetterB},
		{pct: 80, want: LetterB},
		{pct: 79.99, want: LetterC},
		{pct: 70, want: LetterC},
		{pct: 69.5, want: LetterD},
		{pct: 60, want: LetterD},
		{pct: 59.99, want: LetterF},
		{pct: 0, want: LetterF},
		{pct: -20, want: LetterF},
	}
	for _, tt := range tests {
		if got := Classify(tt.pct); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	prev := Classify(-10).Points()
	for pct := -10.0; pct <= 110; pct += 0.25 {
		pts := Classify(pct).Points()
		if pts < prev {
			t.Fatalf("Classify is not monotonic at %v: %v < %v", pct, pts, prev)
		}
		prev = pts
	}
}

func TestLetterPoints(t *testing.T) {
	want := map[Letter]float64{LetterA: 4, LetterB: 3, LetterC: 2, LetterD: 1, LetterF: 0}
	for l, pts := range want {
		assert.Equal(t, pts, l.Points(), "%s points", l)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		maxScore float64
		want     float64
		wantErr  bool
	}{
		{name: "zero score", score: 0, maxScore: 100, want: 0},
		{name: "half", score: 25, maxScore: 50, want: 50},
		{name: "over max", score: 110, maxScore: 100, want: 110},
		{name: "zero max", score: 50, maxScore: 0, wantErr: true},
		{name: "negative max", score: 50, maxScore: -10, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percentage(tt.score, tt.maxScore)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrInvalidInput, errors.Cause(errors.Unwrap(err)))
				var verr *core.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "max_score", verr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestColorBand(t *testing.T) {
	tests := []struct {
		pct  float64
		want Severity
	}{
		{pct: 95, want: SeverityGood},
		{pct: 80, want: SeverityGood},
		{pct: 79, want: SeverityOK},
		{pct: 70, want: SeverityOK},
		{pct: 65, want: SeverityWarn},
		{pct: 60, want: SeverityWarn},
		{pct: 59.9, want: SeverityBad},
	}
	for _, tt := range tests {
		if got := ColorBand(tt.pct); got != tt.want {
			t.Errorf("ColorBand(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestAggregateGPA(t *testing.T) {
	tests := []struct {
		name    string
		records []Weighted
		want    float64
	}{
		{name: "empty", records: nil, want: 0},
		{name: "zero total weight", records: []Weighted{{Percentage: 95, Weight: 0}}, want: 0},
		{name: "single A", records: []Weighted{{Percentage: 95, Weight: 1}}, want: 4.0},
		{name: "weighted A and D", records: []Weighted{{Percentage: 95, Weight: 2}, {Percentage: 65, Weight: 1}}, want: 3.0},
		{name: "no rounding", records: []Weighted{{Percentage: 95, Weight: 1}, {Percentage: 85, Weight: 1}, {Percentage: 85, Weight: 1}}, want: 10.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateGPA(tt.records)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AggregateGPA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, 0, sum.Count)
	assert.Equal(t, 0.0, sum.GPA)
	assert.Len(t, sum.Distribution, len(AllLetters))

	grades := []Grade{
		{Percentage: 95, Weight: 2},
		{Percentage: 65, Weight: 1},
		{Percentage: 40, Weight: 0.5},
	}
	sum = Summarize(grades)
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, (4.0*2+1.0*1)/3.5, sum.GPA, 1e-12)
	assert.InDelta(t, 200.0/3, sum.AveragePercentage, 1e-12)
	assert.Equal(t, map[Letter]int{LetterA: 1, LetterB: 0, LetterC: 0, LetterD: 1, LetterF: 1}, sum.Distribution)
}
