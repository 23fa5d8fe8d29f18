package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/brightspark/apps/api/echo"
	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/session"
	"github.com/trezcool/brightspark/storage/database/fixtures"
	testutil "github.com/trezcool/brightspark/tests"
)

const appName = "Brightspark"

var errMissingToken = map[string]interface{}{"error": "missing or malformed jwt"}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantData interface{} // compared as JSON when set
	check    func(t *testing.T, rec *httptest.ResponseRecorder)
}

func newServer(t *testing.T) (*echoapi.Server, *session.TokenCodec) {
	t.Helper()
	conf := &core.Config{AppName: appName, SecretKey: "secret", TestMode: true}
	codec := session.NewTokenCodec(conf.SecretKey, conf.AppName, time.Hour)
	translator := core.NewTranslator()

	srv := echoapi.NewServer(conf, &echoapi.Deps{
		Facade:     testutil.NewFacade(t, testutil.SeededStore(t), &testutil.Mailbox{}),
		Codec:      codec,
		Validate:   data.NewValidator(translator),
		Translator: translator,
		Logger:     testutil.NewLogger(t),
	})
	return srv, codec
}

func getToken(t *testing.T, codec *session.TokenCodec, id string) string {
	t.Helper()
	token, err := codec.Issue(testutil.Principal(t, id))
	require.NoError(t, err)
	return token
}

func newAuthRequest(t *testing.T, method, path, token string, body interface{}) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func runTests(t *testing.T, srv *echoapi.Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(t, tt.method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantData != nil {
				want, err := json.Marshal(tt.wantData)
				require.NoError(t, err)
				assert.JSONEq(t, string(want), rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}

func ids(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var records []map[string]interface{}
	decode(t, rec, &records)
	result := make([]string, 0, len(records))
	for _, r := range records {
		result = append(result, r["id"].(string))
	}
	return result
}

func TestServer_home(t *testing.T) {
	srv, _ := newServer(t)
	req, rec := newAuthRequest(t, http.MethodGet, "/", "", nil)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Brightspark API!", rec.Body.String())
}

func TestServer_auth(t *testing.T) {
	srv, codec := newServer(t)
	foreign := session.NewTokenCodec("secret", "Another App", time.Hour)

	runTests(t, srv, []httpTest{
		{
			name:     "login",
			method:   http.MethodPost,
			path:     "/v1/login",
			body:     session.Credentials{Email: "Student@Brightspark.com", Password: fixtures.Password},
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp struct {
					Token string            `json:"token"`
					User  map[string]string `json:"user"`
				}
				decode(t, rec, &resp)
				assert.Equal(t, map[string]string{"id": "4", "name": "Student Jones", "role": "learner", "org_id": "1"}, resp.User)

				p, err := codec.Parse(resp.Token)
				require.NoError(t, err)
				assert.Equal(t, fixtures.LearnerJonesID, p.ID())
			},
		},
		{
			name:     "login with a wrong password",
			method:   http.MethodPost,
			path:     "/v1/login",
			body:     session.Credentials{Email: "student@brightspark.com", Password: "wrong"},
			wantCode: http.StatusBadRequest,
			wantData: map[string]string{"error": "authentication failed"},
		},
		{
			name:     "login with an unknown email",
			method:   http.MethodPost,
			path:     "/v1/login",
			body:     session.Credentials{Email: "nobody@brightspark.com", Password: fixtures.Password},
			wantCode: http.StatusBadRequest,
			wantData: map[string]string{"error": "authentication failed"},
		},
		{
			name:     "login with invalid credentials",
			method:   http.MethodPost,
			path:     "/v1/login",
			body:     session.Credentials{Email: "student"},
			wantCode: http.StatusBadRequest,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var fields map[string]string
				decode(t, rec, &fields)
				assert.Contains(t, fields, "email")
				assert.Contains(t, fields, "password")
			},
		},
		{
			name:     "me",
			method:   http.MethodGet,
			path:     "/v1/me",
			token:    getToken(t, codec, fixtures.EducatorSmithID),
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var usr map[string]interface{}
				decode(t, rec, &usr)
				assert.Equal(t, "teacher@brightspark.com", usr["email"])
				assert.NotContains(t, usr, "password_hash")
			},
		},
		{
			name:     "refresh token",
			method:   http.MethodPost,
			path:     "/v1/refresh-token",
			token:    getToken(t, codec, fixtures.EducatorSmithID),
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp struct {
					Token string            `json:"token"`
					User  map[string]string `json:"user"`
				}
				decode(t, rec, &resp)
				assert.Equal(t, fixtures.EducatorSmithID, resp.User["id"])
				assert.NotEmpty(t, resp.Token)
			},
		},
		{
			name:     "missing token",
			method:   http.MethodGet,
			path:     "/v1/me",
			wantCode: http.StatusUnauthorized,
			wantData: errMissingToken,
		},
		{
			name:     "malformed token",
			method:   http.MethodGet,
			path:     "/v1/assignments",
			token:    "not-a-jwt",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "token from another issuer",
			method:   http.MethodGet,
			path:     "/v1/me",
			token:    getToken(t, foreign, fixtures.EducatorSmithID),
			wantCode: http.StatusUnauthorized,
			wantData: map[string]string{"error": "user not authenticated"},
		},
	})
}

func TestServer_resources(t *testing.T) {
	srv, codec := newServer(t)
	var (
		admin    = getToken(t, codec, fixtures.PlatformAdminID)
		orgAdmin = getToken(t, codec, fixtures.OrgAdminID)
		smith    = getToken(t, codec, fixtures.EducatorSmithID)
		williams = getToken(t, codec, fixtures.LearnerWillsID)
		brown    = getToken(t, codec, fixtures.GuardianBrownID)
	)

	runTests(t, srv, []httpTest{
		{
			name:     "learner lists the assignments naming them",
			method:   http.MethodGet,
			path:     "/v1/assignments",
			token:    williams,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, []string{"1"}, ids(t, rec))
			},
		},
		{
			name:     "guardian lists the progress of their children",
			method:   http.MethodGet,
			path:     "/v1/progress",
			token:    brown,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, []string{"1", "2", "3"}, ids(t, rec))
			},
		},
		{
			name:     "type by name",
			method:   http.MethodGet,
			path:     "/v1/learning_unit",
			token:    smith,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Len(t, ids(t, rec), 4)
			},
		},
		{
			name:     "ordered list",
			method:   http.MethodGet,
			path:     "/v1/assignments?ordering=-due_date",
			token:    admin,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, []string{"2", "1"}, ids(t, rec))
			},
		},
		{
			name:     "assignments of a subject",
			method:   http.MethodGet,
			path:     "/v1/assignments?subject_id=2",
			token:    admin,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, []string{"2"}, ids(t, rec))
			},
		},
		{
			name:     "subject filter after visibility",
			method:   http.MethodGet,
			path:     "/v1/assignments?subject_id=2",
			token:    williams,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Empty(t, ids(t, rec))
			},
		},
		{
			name:     "learning units of a subject",
			method:   http.MethodGet,
			path:     "/v1/learning-units?subject_id=1&ordering=-id",
			token:    smith,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, []string{"4", "1"}, ids(t, rec))
			},
		},
		{
			name:     "users by role",
			method:   http.MethodGet,
			path:     "/v1/users?role=educator",
			token:    admin,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, []string{fixtures.EducatorSmithID, fixtures.EducatorJohnsID}, ids(t, rec))
			},
		},
		{
			name:     "users by unknown role",
			method:   http.MethodGet,
			path:     "/v1/users?role=janitor",
			token:    admin,
			wantCode: http.StatusBadRequest,
			wantData: map[string]string{"role": "unknown role janitor"},
		},
		{
			name:     "badges by subject",
			method:   http.MethodGet,
			path:     "/v1/badges?subject_id=1",
			token:    admin,
			wantCode: http.StatusBadRequest,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var fields map[string]string
				decode(t, rec, &fields)
				assert.Contains(t, fields, "subject_id")
			},
		},
		{
			name:     "learner lists users",
			method:   http.MethodGet,
			path:     "/v1/users",
			token:    williams,
			wantCode: http.StatusForbidden,
			wantData: map[string]string{"error": "permission denied"},
		},
		{
			name:     "unknown type",
			method:   http.MethodGet,
			path:     "/v1/classes",
			token:    admin,
			wantCode: http.StatusNotFound,
			wantData: map[string]string{"error": "not found"},
		},
		{
			name:     "get",
			method:   http.MethodGet,
			path:     "/v1/assignments/1",
			token:    williams,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var a map[string]interface{}
				decode(t, rec, &a)
				assert.Equal(t, "Weekly Math Quiz", a["title"])
			},
		},
		{
			name:     "get out of reach",
			method:   http.MethodGet,
			path:     "/v1/assignments/2",
			token:    williams,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "get missing",
			method:   http.MethodGet,
			path:     "/v1/assignments/does-not-exist",
			token:    admin,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/v1/learning-units",
			token:    smith,
			body:     map[string]string{"title": "Fractions", "subject_id": "1", "key_stage": "KS2", "content_type": "video"},
			wantCode: http.StatusCreated,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var lu map[string]interface{}
				decode(t, rec, &lu)
				assert.NotEmpty(t, lu["id"])
				assert.Equal(t, fixtures.EducatorSmithID, lu["created_by"])
				assert.Equal(t, "1", lu["org_id"])
			},
		},
		{
			name:     "create invalid",
			method:   http.MethodPost,
			path:     "/v1/learning-units",
			token:    smith,
			body:     map[string]string{"title": "Fractions", "subject_id": "1", "key_stage": "KS9", "content_type": "video"},
			wantCode: http.StatusBadRequest,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var fields map[string]string
				decode(t, rec, &fields)
				assert.Contains(t, fields, "key_stage")
			},
		},
		{
			name:     "create malformed",
			method:   http.MethodPost,
			path:     "/v1/learning-units",
			token:    smith,
			body:     "{",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "create denied",
			method:   http.MethodPost,
			path:     "/v1/badges",
			token:    smith,
			body:     map[string]string{"name": "Star"},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "create user",
			method: http.MethodPost,
			path:   "/v1/users",
			token:  admin,
			body: map[string]string{
				"name": "New Teacher", "email": "NEW@brightspark.com", "role": "educator", "org_id": "1",
				"password": "Correct-Horse-97", "password_confirm": "Correct-Horse-97",
			},
			wantCode: http.StatusCreated,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var usr map[string]interface{}
				decode(t, rec, &usr)
				assert.Equal(t, "new@brightspark.com", usr["email"])
				assert.NotContains(t, usr, "password")
			},
		},
		{
			name:   "create a peer admin",
			method: http.MethodPost,
			path:   "/v1/users",
			token:  orgAdmin,
			body: map[string]string{
				"name": "Deputy Admin", "email": "deputy@brightspark.com", "role": "org_admin",
				"password": "Correct-Horse-97", "password_confirm": "Correct-Horse-97",
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "create user without org",
			method: http.MethodPost,
			path:   "/v1/users",
			token:  admin,
			body: map[string]string{
				"name": "Lost Teacher", "email": "lost@brightspark.com", "role": "educator",
				"password": "Correct-Horse-97", "password_confirm": "Correct-Horse-97",
			},
			wantCode: http.StatusBadRequest,
			wantData: map[string]string{"org_id": "educator requires an org affiliation"},
		},
		{
			name:     "update",
			method:   http.MethodPatch,
			path:     "/v1/learning-units/1",
			token:    smith,
			body:     map[string]string{"title": "Addition up to 20"},
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var lu map[string]interface{}
				decode(t, rec, &lu)
				assert.Equal(t, "Addition up to 20", lu["title"])
			},
		},
		{
			name:     "update a colleague's unit",
			method:   http.MethodPatch,
			path:     "/v1/learning-units/3",
			token:    smith,
			body:     map[string]string{"title": "Mine now"},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "update a guardianship",
			method:   http.MethodPatch,
			path:     "/v1/guardianships/1",
			token:    admin,
			body:     map[string]string{"learner_id": fixtures.LearnerWillsID},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/v1/badges/3",
			token:    admin,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "get deleted",
			method:   http.MethodGet,
			path:     "/v1/badges/3",
			token:    admin,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "trailing slash",
			method:   http.MethodGet,
			path:     "/v1/badges/",
			token:    admin,
			wantCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, []string{"1", "2"}, ids(t, rec))
			},
		},
	})
}

func TestServer_metrics(t *testing.T) {
	srv, codec := newServer(t)

	req, rec := newAuthRequest(t, http.MethodGet, "/v1/assignments", getToken(t, codec, fixtures.LearnerJonesID), nil)
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = newAuthRequest(t, http.MethodGet, "/metrics", "", nil)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `brightspark_policy_decisions_total{action="view-list",outcome="allow",resource="assignment"}`)
	assert.Contains(t, body, `brightspark_http_requests_total{method="GET",route="/v1/:type",status="200"}`)
	assert.Contains(t, body, "brightspark_http_request_duration_seconds")
	assert.Contains(t, body, "brightspark_http_in_flight_requests")
}
