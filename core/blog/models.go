package blog

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studash/dashboard/core"
)

type Status string

// Statuses
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

var AllStatuses = []Status{StatusDraft, StatusPublished, StatusArchived}

func (s Status) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type Post struct {
	ID            int64      `json:"id"`
	AuthorID      int64      `json:"author_id"`
	AuthorName    string     `json:"author_name,omitempty"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	Category      string     `json:"category"`
	Tags          string     `json:"tags"`
	Status        Status     `json:"status"`
	PublishedDate *time.Time `json:"published_date,omitempty"` // UTC
	CreatedAt     time.Time  `json:"created_at"`               // UTC
	UpdatedAt     time.Time  `json:"updated_at"`               // UTC
}

// publish moves p to status and stamps the first publication date.
func (p *Post) publish(status Status, at time.Time) {
	p.Status = status
	if status == StatusPublished && p.PublishedDate == nil {
		p.PublishedDate = &at
	}
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowers title and joins its alphanumeric runs with dashes.
func Slugify(title string) string {
	slug := slugSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(slug, "-")
}

// NewPost contains information needed to create a new Post.
type NewPost struct {
	Title    string `json:"title" validate:"required,notblank,max=255"`
	Content  string `json:"content" validate:"required,min=50"`
	Excerpt  string `json:"excerpt" validate:"max=500"`
	Category string `json:"category" validate:"max=50"`
	Tags     string `json:"tags" validate:"max=255"`
	Status   string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	np.Excerpt = core.CleanString(np.Excerpt)
	np.Category = core.CleanString(np.Category)
	np.Tags = core.CleanString(np.Tags)
	np.Status = core.CleanString(np.Status, true /* lower */)
	return validate.Struct(np)
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=draft published archived"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type QueryFilter struct {
	AuthorID int64
	Status   Status `query:"status"`
}
