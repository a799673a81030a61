package file

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
)

var (
	ErrNotFound = errors.New("file not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		InsertFile(ctx context.Context, f File, exec ...core.DBExecutor) (File, error)
		// QueryFiles returns the user's files, newest first.
		QueryFiles(ctx context.Context, userID int64, exec ...core.DBExecutor) ([]File, error)
		DeleteFile(ctx context.Context, id, userID int64, exec ...core.DBExecutor) error
		FileStats(ctx context.Context, userID int64, exec ...core.DBExecutor) (Stats, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create records the metadata of a file stored for userID. nf is expected to be validated.
func (svc *Service) Create(ctx context.Context, userID int64, nf NewFile) (File, error) {
	f := File{
		UserID:      userID,
		FileName:    nf.FileName,
		Category:    nf.Category,
		FileSize:    nf.FileSize,
		MimeType:    nf.MimeType,
		StorageType: StorageType(nf.StorageType),
		Visibility:  Visibility(nf.Visibility),
		CreatedAt:   NowFunc().UTC(),
	}
	if f.StorageType == "" {
		f.StorageType = StorageLocal
	}
	if f.Visibility == "" {
		f.Visibility = VisibilityPrivate
	}

	f, err := svc.repo.InsertFile(ctx, f)
	if err != nil {
		return File{}, errors.Wrap(err, "inserting file")
	}
	f.SizeText = FormatBytes(f.FileSize)
	return f, nil
}

func (svc *Service) Query(ctx context.Context, userID int64) ([]File, error) {
	files, err := svc.repo.QueryFiles(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying files")
	}
	for i := range files {
		files[i].SizeText = FormatBytes(files[i].FileSize)
	}
	return files, nil
}

func (svc *Service) Delete(ctx context.Context, id, userID int64) error {
	return svc.repo.DeleteFile(ctx, id, userID)
}

// Stats summarizes the user's storage usage.
func (svc *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	stats, err := svc.repo.FileStats(ctx, userID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting files")
	}
	stats.SizeText = FormatBytes(stats.TotalSize)
	return stats, nil
}
