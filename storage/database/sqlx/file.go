package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/file"
)

const fileColumns = `id, user_id, file_name, category, file_size, mime_type, storage_type, visibility, created_at`

type fileRow struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	FileName    string    `db:"file_name"`
	Category    string    `db:"category"`
	FileSize    int64     `db:"file_size"`
	MimeType    string    `db:"mime_type"`
	StorageType string    `db:"storage_type"`
	Visibility  string    `db:"visibility"`
	CreatedAt   time.Time `db:"created_at"`
}

type fileRepository struct {
	exec core.DBExecutor
}

var _ file.Repository = (*fileRepository)(nil) // interface compliance check

func NewFileRepository(exec core.DBExecutor) *fileRepository {
	return &fileRepository{exec: exec}
}

func (repo fileRepository) unboil(row fileRow) file.File {
	return file.File{
		ID:          row.ID,
		UserID:      row.UserID,
		FileName:    row.FileName,
		Category:    row.Category,
		FileSize:    row.FileSize,
		MimeType:    row.MimeType,
		StorageType: file.StorageType(row.StorageType),
		Visibility:  file.Visibility(row.Visibility),
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

func (repo fileRepository) InsertFile(ctx context.Context, f file.File, exec ...core.DBExecutor) (file.File, error) {
	row := fileRow{
		UserID:      f.UserID,
		FileName:    f.FileName,
		Category:    f.Category,
		FileSize:    f.FileSize,
		MimeType:    f.MimeType,
		StorageType: string(f.StorageType),
		Visibility:  string(f.Visibility),
		CreatedAt:   f.CreatedAt.UTC(),
	}
	q := `INSERT INTO files (user_id, file_name, category, file_size, mime_type, storage_type, visibility, created_at)
		VALUES (:user_id, :file_name, :category, :file_size, :mime_type, :storage_type, :visibility, :created_at)
		RETURNING id`

	exe := getExec(repo.exec, exec)
	q, args, err := sqlx.Named(q, row)
	if err != nil {
		return file.File{}, errors.Wrap(err, "binding file")
	}
	if err = exe.GetContext(ctx, &row.ID, exe.Rebind(q), args...); err != nil {
		return file.File{}, errors.Wrap(err, "inserting file")
	}
	return repo.unboil(row), nil
}

func (repo fileRepository) QueryFiles(ctx context.Context, userID int64, exec ...core.DBExecutor) ([]file.File, error) {
	q := "SELECT " + fileColumns + " FROM files WHERE user_id = $1 ORDER BY created_at DESC, id DESC"

	var rows []fileRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying files")
	}
	files := make([]file.File, 0, len(rows))
	for _, r := range rows {
		files = append(files, repo.unboil(r))
	}
	return files, nil
}

func (repo fileRepository) DeleteFile(ctx context.Context, id, userID int64, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, "DELETE FROM files WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting file")
	}
	return checkAffected(res, file.ErrNotFound)
}

func (repo fileRepository) FileStats(ctx context.Context, userID int64, exec ...core.DBExecutor) (file.Stats, error) {
	q := `SELECT COUNT(*) AS total_files,
		COALESCE(SUM(file_size), 0) AS total_size,
		COUNT(*) FILTER (WHERE storage_type = 'local') AS local_files,
		COUNT(*) FILTER (WHERE storage_type = 'google-drive') AS drive_files
		FROM files WHERE user_id = $1`

	var row struct {
		TotalFiles int   `db:"total_files"`
		TotalSize  int64 `db:"total_size"`
		LocalFiles int   `db:"local_files"`
		DriveFiles int   `db:"drive_files"`
	}
	if err := getExec(repo.exec, exec).GetContext(ctx, &row, q, userID); err != nil {
		return file.Stats{}, errors.Wrap(err, "counting files")
	}
	return file.Stats{
		TotalFiles: row.TotalFiles,
		TotalSize:  row.TotalSize,
		LocalFiles: row.LocalFiles,
		DriveFiles: row.DriveFiles,
	}, nil
}
