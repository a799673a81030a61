package blog

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrNotAuthor = errors.New("you can only change your own posts")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		InsertPost(ctx context.Context, p Post, exec ...core.DBExecutor) (Post, error)
		GetPost(ctx context.Context, id int64, exec ...core.DBExecutor) (Post, error)
		// QueryPosts returns matching posts, newest first. Published posts are ordered by publication date.
		QueryPosts(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Post, error)
		UpdatePostStatus(ctx context.Context, p Post, exec ...core.DBExecutor) error
		DeletePost(ctx context.Context, id int64, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a new post by authorID. np is expected to be validated.
func (svc *Service) Create(ctx context.Context, authorID int64, np NewPost) (Post, error) {
	ts := NowFunc().UTC()
	p := Post{
		AuthorID:  authorID,
		Title:     np.Title,
		Slug:      Slugify(np.Title),
		Content:   np.Content,
		Excerpt:   np.Excerpt,
		Category:  np.Category,
		Tags:      np.Tags,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	status := Status(np.Status)
	if status == "" {
		status = StatusDraft
	}
	p.publish(status, ts)

	p, err := svc.repo.InsertPost(ctx, p)
	if err != nil {
		return Post{}, errors.Wrap(err, "inserting post")
	}
	return p, nil
}

// Mine lists authorID's posts in every status.
func (svc *Service) Mine(ctx context.Context, authorID int64, status Status) ([]Post, error) {
	if status != "" && !status.IsValid() {
		return nil, core.NewValidationError(
			errors.New("invalid post status"),
			core.FieldError{Field: "status", Error: "invalid post status"},
		)
	}
	return svc.repo.QueryPosts(ctx, QueryFilter{AuthorID: authorID, Status: status})
}

// Published lists every author's published posts along with their names.
func (svc *Service) Published(ctx context.Context) ([]Post, error) {
	return svc.repo.QueryPosts(ctx, QueryFilter{Status: StatusPublished})
}

func (svc *Service) ownPost(ctx context.Context, id, authorID int64) (Post, error) {
	p, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if p.AuthorID != authorID {
		return Post{}, ErrNotAuthor
	}
	return p, nil
}

// UpdateStatus moves the author's post to status.
func (svc *Service) UpdateStatus(ctx context.Context, id, authorID int64, status Status) (Post, error) {
	p, err := svc.ownPost(ctx, id, authorID)
	if err != nil {
		return Post{}, err
	}
	ts := NowFunc().UTC()
	p.publish(status, ts)
	p.UpdatedAt = ts
	if err = svc.repo.UpdatePostStatus(ctx, p); err != nil {
		return Post{}, errors.Wrap(err, "updating post status")
	}
	return p, nil
}

// Delete removes the post if authorID wrote it.
func (svc *Service) Delete(ctx context.Context, id, authorID int64) error {
	if _, err := svc.ownPost(ctx, id, authorID); err != nil {
		return err
	}
	if err := svc.repo.DeletePost(ctx, id); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return nil
}
