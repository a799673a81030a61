package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studash/dashboard/core/task"
	"github.com/studash/dashboard/core/user"
)

func Test_taskApi(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)
	other := app.createUser(t, "Other", "other", user.RoleStudent, user.StatusActive)
	token := app.getToken(t, student)

	create := func(token string, nt task.NewTask) task.Task {
		rec := app.do(http.MethodPost, "/api/tasks", token, marshalObj(t, nt))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created task.Task
		decode(t, rec, &created)
		return created
	}

	essay := create(token, task.NewTask{Title: "Essay", Subject: "History", Deadline: "2999-01-10"})
	assert.Equal(t, task.StatusNotStarted, essay.Status)
	assert.Equal(t, task.PriorityMedium, essay.Priority)
	assert.NotNil(t, essay.Deadline)

	lab := create(token, task.NewTask{Title: "Lab report", Priority: "HIGH", Deadline: "2999-01-05"})
	assert.Equal(t, task.PriorityHigh, lab.Priority)
	reading := create(token, task.NewTask{Title: "Reading"})
	foreign := create(app.getToken(t, other), task.NewTask{Title: "Not yours"})

	rec := app.do(http.MethodGet, "/api/tasks", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tasks []task.Task
	decode(t, rec, &tasks)
	if assert.Len(t, tasks, 3) {
		// earliest deadline first, no deadline last
		assert.Equal(t, []int64{lab.ID, essay.ID, reading.ID}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	}

	statusPath := func(id int64) string { return fmt.Sprintf("/api/tasks/%d/status", id) }
	runHTTPTests(t, app, []httpTest{
		{
			name:     "start",
			method:   http.MethodPut,
			path:     statusPath(lab.ID),
			token:    token,
			body:     []byte(`{"status":"in-progress"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "complete",
			method:   http.MethodPut,
			path:     statusPath(reading.ID),
			token:    token,
			body:     []byte(`{"status":"completed"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "invalid status",
			method:   http.MethodPut,
			path:     statusPath(essay.ID),
			token:    token,
			body:     []byte(`{"status":"done"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "someone else's task",
			method:   http.MethodPut,
			path:     statusPath(foreign.ID),
			token:    token,
			body:     []byte(`{"status":"completed"}`),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: task.ErrNotFound.Error()}),
		},
		{
			name:     "bad id",
			method:   http.MethodPut,
			path:     "/api/tasks/abc/status",
			token:    token,
			body:     []byte(`{"status":"completed"}`),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "missing title",
			method:   http.MethodPost,
			path:     "/api/tasks",
			token:    token,
			body:     []byte(`{"description":"no title"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name:     "bad status filter",
			method:   http.MethodGet,
			path:     "/api/tasks?status=bogus",
			token:    token,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "stats",
			method:   http.MethodGet,
			path:     "/api/tasks/stats",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, task.Stats{Total: 3, NotStarted: 1, InProgress: 1, Completed: 1}),
		},
	})

	rec = app.do(http.MethodGet, "/api/tasks?status=in-progress", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tasks = nil
	decode(t, rec, &tasks)
	if assert.Len(t, tasks, 1) {
		assert.Equal(t, lab.ID, tasks[0].ID)
	}
}
