package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/blog"
)

const blogColumns = `b.id, b.author_id, b.title, b.slug, b.content, b.excerpt, b.category, b.tags, b.status,
	b.published_date, b.created_at, b.updated_at, u.first_name || ' ' || u.last_name AS author_name`

type blogRow struct {
	ID            int64     `db:"id"`
	AuthorID      int64     `db:"author_id"`
	AuthorName    string    `db:"author_name"`
	Title         string    `db:"title"`
	Slug          string    `db:"slug"`
	Content       string    `db:"content"`
	Excerpt       string    `db:"excerpt"`
	Category      string    `db:"category"`
	Tags          string    `db:"tags"`
	Status        string    `db:"status"`
	PublishedDate null.Time `db:"published_date"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type blogRepository struct {
	exec core.DBExecutor
}

var _ blog.Repository = (*blogRepository)(nil) // interface compliance check

func NewBlogRepository(exec core.DBExecutor) *blogRepository {
	return &blogRepository{exec: exec}
}

func (repo blogRepository) boil(p blog.Post) blogRow {
	return blogRow{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		AuthorName:    p.AuthorName,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		Category:      p.Category,
		Tags:          p.Tags,
		Status:        string(p.Status),
		PublishedDate: null.TimeFromPtr(utcPtr(p.PublishedDate)),
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func (repo blogRepository) unboil(row blogRow) blog.Post {
	return blog.Post{
		ID:            row.ID,
		AuthorID:      row.AuthorID,
		AuthorName:    row.AuthorName,
		Title:         row.Title,
		Slug:          row.Slug,
		Content:       row.Content,
		Excerpt:       row.Excerpt,
		Category:      row.Category,
		Tags:          row.Tags,
		Status:        blog.Status(row.Status),
		PublishedDate: utcPtr(row.PublishedDate.Ptr()),
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func (repo blogRepository) InsertPost(ctx context.Context, p blog.Post, exec ...core.DBExecutor) (blog.Post, error) {
	row := repo.boil(p)
	q := `INSERT INTO blogs (author_id, title, slug, content, excerpt, category, tags, status, published_date,
		created_at, updated_at)
		VALUES (:author_id, :title, :slug, :content, :excerpt, :category, :tags, :status, :published_date,
		:created_at, :updated_at)
		RETURNING id`

	exe := getExec(repo.exec, exec)
	q, args, err := sqlx.Named(q, row)
	if err != nil {
		return blog.Post{}, errors.Wrap(err, "binding post")
	}
	if err = exe.GetContext(ctx, &row.ID, exe.Rebind(q), args...); err != nil {
		return blog.Post{}, errors.Wrap(err, "inserting post")
	}
	return repo.unboil(row), nil
}

func (repo blogRepository) GetPost(ctx context.Context, id int64, exec ...core.DBExecutor) (blog.Post, error) {
	q := "SELECT " + blogColumns + " FROM blogs b JOIN users u ON u.id = b.author_id WHERE b.id = $1"

	var row blogRow
	if err := getExec(repo.exec, exec).GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return blog.Post{}, blog.ErrNotFound
		}
		return blog.Post{}, errors.Wrap(err, "finding post")
	}
	return repo.unboil(row), nil
}

func (repo blogRepository) QueryPosts(ctx context.Context, filter blog.QueryFilter, exec ...core.DBExecutor) ([]blog.Post, error) {
	q := "SELECT " + blogColumns + " FROM blogs b JOIN users u ON u.id = b.author_id WHERE TRUE"
	var args []interface{}
	if filter.AuthorID != 0 {
		q += " AND b.author_id = ?"
		args = append(args, filter.AuthorID)
	}
	if filter.Status != "" {
		q += " AND b.status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Status == blog.StatusPublished {
		q += " ORDER BY b.published_date DESC, b.created_at DESC, b.id DESC"
	} else {
		q += " ORDER BY b.created_at DESC, b.id DESC"
	}

	exe := getExec(repo.exec, exec)
	var rows []blogRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying posts")
	}
	posts := make([]blog.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, repo.unboil(r))
	}
	return posts, nil
}

func (repo blogRepository) UpdatePostStatus(ctx context.Context, p blog.Post, exec ...core.DBExecutor) error {
	row := repo.boil(p)
	q := "UPDATE blogs SET status = :status, published_date = :published_date, updated_at = :updated_at WHERE id = :id"

	res, err := sqlx.NamedExecContext(ctx, getExec(repo.exec, exec), q, row)
	if err != nil {
		return errors.Wrap(err, "updating post status")
	}
	return checkAffected(res, blog.ErrNotFound)
}

func (repo blogRepository) DeletePost(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, "DELETE FROM blogs WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return checkAffected(res, blog.ErrNotFound)
}
