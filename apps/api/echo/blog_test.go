package echoapi_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studash/dashboard/core/blog"
	"github.com/studash/dashboard/core/user"
)

func Test_blogApi(t *testing.T) {
	app := setup(t)
	author := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)
	other := app.createUser(t, "Other", "other", user.RoleStudent, user.StatusActive)
	token := app.getToken(t, author)
	content := strings.Repeat("Revision notes for the finals. ", 3)

	create := func(token string, np blog.NewPost) blog.Post {
		rec := app.do(http.MethodPost, "/api/blog", token, marshalObj(t, np))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created blog.Post
		decode(t, rec, &created)
		return created
	}

	draft := create(token, blog.NewPost{Title: "Finals Prep: Week 1", Content: content})
	assert.Equal(t, "finals-prep-week-1", draft.Slug)
	assert.Equal(t, blog.StatusDraft, draft.Status)
	assert.Nil(t, draft.PublishedDate)

	foreign := create(app.getToken(t, other), blog.NewPost{Title: "Other's notes", Content: content, Status: "published"})
	assert.NotNil(t, foreign.PublishedDate)

	postPath := func(id int64) string { return fmt.Sprintf("/api/blog/%d", id) }
	runHTTPTests(t, app, []httpTest{
		{
			name:     "short content",
			method:   http.MethodPost,
			path:     "/api/blog",
			token:    token,
			body:     marshalObj(t, blog.NewPost{Title: "Tiny", Content: "too short"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing title",
			method:   http.MethodPost,
			path:     "/api/blog",
			token:    token,
			body:     marshalObj(t, blog.NewPost{Content: content}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name:     "anonymous",
			method:   http.MethodGet,
			path:     "/api/blog",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "publish someone else's post",
			method:   http.MethodPut,
			path:     postPath(foreign.ID) + "/status",
			token:    token,
			body:     []byte(`{"status":"archived"}`),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: blog.ErrNotAuthor.Error()}),
		},
		{
			name:     "delete someone else's post",
			method:   http.MethodDelete,
			path:     postPath(foreign.ID),
			token:    token,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "delete unknown post",
			method:   http.MethodDelete,
			path:     postPath(999),
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: blog.ErrNotFound.Error()}),
		},
		{
			name:     "bad id",
			method:   http.MethodDelete,
			path:     "/api/blog/abc",
			token:    token,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "publish own draft",
			method:   http.MethodPut,
			path:     postPath(draft.ID) + "/status",
			token:    token,
			body:     []byte(`{"status":"published"}`),
			wantCode: http.StatusOK,
		},
	})

	rec := app.do(http.MethodGet, "/api/blog", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var posts []blog.Post
	decode(t, rec, &posts)
	assert.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, blog.StatusPublished, p.Status)
		assert.NotEmpty(t, p.AuthorName)
	}

	rec = app.do(http.MethodGet, "/api/blog/mine?status=published", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	posts = nil
	decode(t, rec, &posts)
	if assert.Len(t, posts, 1) {
		assert.Equal(t, draft.ID, posts[0].ID)
	}

	rec = app.do(http.MethodDelete, postPath(draft.ID), token)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/blog/mine", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	posts = nil
	decode(t, rec, &posts)
	assert.Empty(t, posts)
}
