package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/studash/dashboard/apps/api/echo"
	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/audit"
	"github.com/studash/dashboard/core/blog"
	"github.com/studash/dashboard/core/file"
	"github.com/studash/dashboard/core/grade"
	"github.com/studash/dashboard/core/task"
	"github.com/studash/dashboard/core/user"
	emailsvc "github.com/studash/dashboard/services/email"
	logsvc "github.com/studash/dashboard/services/logger"
	dummydb "github.com/studash/dashboard/storage/database/dummy"
	testutil "github.com/studash/dashboard/tests"
)

const pwd = "Str0ngPassw0rd"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	echoapi.Server
	conf      *core.Config
	usrRepo   user.Repository
	auditRepo audit.Repository
	gradeRepo grade.Repository
	taskRepo  task.Repository
	mailSvc   *emailsvc.MockService
	tokens    *echoapi.TokenIssuer
}

func setup(t *testing.T) testApp {
	t.Helper()
	conf := testutil.Config()
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(conf, logger)
	validate, translator := testutil.Validator()

	db := dummydb.Open()
	app := testApp{
		conf:      conf,
		usrRepo:   dummydb.NewUserRepository(db),
		auditRepo: dummydb.NewAuditRepository(db),
		gradeRepo: dummydb.NewGradeRepository(db),
		taskRepo:  dummydb.NewTaskRepository(db),
		mailSvc:   emailsvc.NewMockService(conf, logger),
		tokens:    echoapi.NewTokenIssuer(conf),
	}
	app.Server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		UserSvc:        user.NewService(db, app.usrRepo, app.auditRepo, app.mailSvc, conf),
		GradeSvc:       grade.NewService(app.gradeRepo),
		TaskSvc:        task.NewService(app.taskRepo),
		AuditSvc:       audit.NewService(app.auditRepo),
		BlogSvc:        blog.NewService(dummydb.NewBlogRepository(db)),
		FileSvc:        file.NewService(dummydb.NewFileRepository(db)),
		Validate:       validate,
		Translator:     translator,
	})
	return app
}

func (app testApp) createUser(t *testing.T, firstName, uname string, role user.Role, status user.Status) user.User {
	return testutil.CreateUser(t, app.usrRepo, firstName, uname, uname+"@test.cd", pwd, role, status)
}

func (app testApp) getToken(t *testing.T, usr user.User) string {
	token, err := app.tokens.IssueToken(usr)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (app testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData skips the body comparison when tt.wantData is nil.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
