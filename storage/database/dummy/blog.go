package dummydb

import (
	"context"
	"sort"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/blog"
)

type blogRepository struct {
	db    *blogTable
	users *userTable
}

var _ blog.Repository = (*blogRepository)(nil) // interface compliance check

func NewBlogRepository(db *DB) *blogRepository {
	return &blogRepository{db: db.blog, users: db.user}
}

func (repo *blogRepository) InsertPost(_ context.Context, p blog.Post, _ ...core.DBExecutor) (blog.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	p.ID = repo.db.pk
	repo.db.table[p.ID] = p
	return p, nil
}

func (repo *blogRepository) GetPost(_ context.Context, id int64, _ ...core.DBExecutor) (blog.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return p, nil
	}
	return blog.Post{}, blog.ErrNotFound
}

func (repo *blogRepository) QueryPosts(_ context.Context, filter blog.QueryFilter, _ ...core.DBExecutor) ([]blog.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.users.RLock()
	defer repo.users.RUnlock()

	posts := make([]blog.Post, 0)
	for _, p := range repo.db.table {
		if filter.AuthorID != 0 && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if author, ok := repo.users.table[p.AuthorID]; ok {
			p.AuthorName = author.FullName()
		}
		posts = append(posts, p)
	}

	byPublication := filter.Status == blog.StatusPublished
	sort.Slice(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if byPublication && a.PublishedDate != nil && b.PublishedDate != nil && !a.PublishedDate.Equal(*b.PublishedDate) {
			return a.PublishedDate.After(*b.PublishedDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return posts, nil
}

func (repo *blogRepository) UpdatePostStatus(_ context.Context, p blog.Post, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[p.ID]
	if !ok {
		return blog.ErrNotFound
	}
	orig.Status = p.Status
	orig.PublishedDate = p.PublishedDate
	orig.UpdatedAt = p.UpdatedAt
	repo.db.table[p.ID] = orig
	return nil
}

func (repo *blogRepository) DeletePost(_ context.Context, id int64, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return blog.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
