package dummydb

import (
	"context"
	"sort"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/file"
)

type fileRepository struct {
	db *fileTable
}

var _ file.Repository = (*fileRepository)(nil) // interface compliance check

func NewFileRepository(db *DB) *fileRepository {
	return &fileRepository{db: db.file}
}

func (repo *fileRepository) InsertFile(_ context.Context, f file.File, _ ...core.DBExecutor) (file.File, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	f.ID = repo.db.pk
	repo.db.table[f.ID] = f
	return f, nil
}

func (repo *fileRepository) QueryFiles(_ context.Context, userID int64, _ ...core.DBExecutor) ([]file.File, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	files := make([]file.File, 0)
	for _, f := range repo.db.table {
		if f.UserID == userID {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.After(files[j].CreatedAt)
		}
		return files[i].ID > files[j].ID
	})
	return files, nil
}

func (repo *fileRepository) DeleteFile(_ context.Context, id, userID int64, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if f, ok := repo.db.table[id]; !ok || f.UserID != userID {
		return file.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *fileRepository) FileStats(_ context.Context, userID int64, _ ...core.DBExecutor) (file.Stats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats file.Stats
	for _, f := range repo.db.table {
		if f.UserID != userID {
			continue
		}
		stats.TotalFiles++
		stats.TotalSize += f.FileSize
		switch f.StorageType {
		case file.StorageLocal:
			stats.LocalFiles++
		case file.StorageGoogleDrive:
			stats.DriveFiles++
		}
	}
	return stats, nil
}
