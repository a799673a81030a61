package dummydb

import (
	"context"
	"sort"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) InsertGrade(_ context.Context, g grade.Grade, _ ...core.DBExecutor) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	g.ID = repo.db.pk
	repo.db.table[g.ID] = g
	return g, nil
}

func (repo *gradeRepository) QueryGrades(_ context.Context, userID int64, _ ...core.DBExecutor) ([]grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]grade.Grade, 0)
	for _, g := range repo.db.table {
		if g.UserID == userID {
			grades = append(grades, g)
		}
	}
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].AssessmentDate.Equal(grades[j].AssessmentDate) {
			return grades[i].ID > grades[j].ID
		}
		return grades[i].AssessmentDate.After(grades[j].AssessmentDate)
	})
	return grades, nil
}

func (repo *gradeRepository) GradeStats(_ context.Context, _ ...core.DBExecutor) (grade.Stats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var (
		stats grade.Stats
		sum   float64
	)
	for _, g := range repo.db.table {
		stats.Total++
		sum += g.Percentage
	}
	if stats.Total > 0 {
		stats.AveragePercentage = sum / float64(stats.Total)
	}
	return stats, nil
}
