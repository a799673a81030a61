package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studash/dashboard/core/file"
	"github.com/studash/dashboard/core/user"
)

func Test_fileApi(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)
	other := app.createUser(t, "Other", "other", user.RoleStudent, user.StatusActive)
	token := app.getToken(t, student)

	create := func(token string, nf file.NewFile) file.File {
		rec := app.do(http.MethodPost, "/api/files", token, marshalObj(t, nf))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created file.File
		decode(t, rec, &created)
		return created
	}

	essay := create(token, file.NewFile{FileName: "essay.docx", FileSize: 1536, Category: "homework"})
	assert.Equal(t, "1.5 KB", essay.SizeText)
	assert.Equal(t, file.StorageLocal, essay.StorageType)
	create(token, file.NewFile{FileName: "lecture.mp4", FileSize: 2 << 30, StorageType: "google-drive"})
	foreign := create(app.getToken(t, other), file.NewFile{FileName: "secret.txt", FileSize: 1})

	runHTTPTests(t, app, []httpTest{
		{
			name:     "missing name",
			method:   http.MethodPost,
			path:     "/api/files",
			token:    token,
			body:     []byte(`{"file_size":10}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"file_name": "this field is required"}),
		},
		{
			name:     "bad storage type",
			method:   http.MethodPost,
			path:     "/api/files",
			token:    token,
			body:     []byte(`{"file_name":"a.txt","storage_type":"dropbox"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "stats",
			method:   http.MethodGet,
			path:     "/api/files/stats",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, file.Stats{
				TotalFiles: 2,
				TotalSize:  2<<30 + 1536,
				SizeText:   "2 GB",
				LocalFiles: 1,
				DriveFiles: 1,
			}),
		},
		{
			name:     "delete someone else's file",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/files/%d", foreign.ID),
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: file.ErrNotFound.Error()}),
		},
	})

	rec := app.do(http.MethodGet, "/api/files", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var files []file.File
	decode(t, rec, &files)
	if assert.Len(t, files, 2) {
		// newest first
		assert.Equal(t, "lecture.mp4", files[0].FileName)
		assert.Equal(t, "2 GB", files[0].SizeText)
	}

	rec = app.do(http.MethodDelete, fmt.Sprintf("/api/files/%d", essay.ID), token)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}
