package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/memoir/internal/logging"
	"github.com/dmitrijs2005/memoir/internal/server/config"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/memoir/internal/server/services"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 24 * time.Hour,
		S3Region:                     "us-east-1",
		S3RootUser:                   "minioadmin",
		S3RootPassword:               "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
		S3Bucket:                     "memories",
		ImageUploadValidityDuration:  15 * time.Minute,
	}
}

type testAPI struct {
	t     *testing.T
	srv   *httptest.Server
	rm    *repomanager.MemoryRepositoryManager
	users *services.UserService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := testConfig()
	rm := repomanager.NewMemoryRepositoryManager()
	us := services.NewUserService(rm, cfg)

	s := NewHTTPServer("127.0.0.1:0", logging.Nop{}, us,
		services.NewCategoryService(rm),
		services.NewMemoryService(rm),
		services.NewImageService(cfg),
	)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv, rm: rm, users: us}
}

// do sends a JSON request and returns the status and raw body.
func (a *testAPI) do(method, path, token string, body any) (int, []byte) {
	a.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, rdr)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

// expect asserts the status and decodes the body into dst when non-nil.
func (a *testAPI) expect(wantStatus int, method, path, token string, body any, dst any) {
	a.t.Helper()
	status, out := a.do(method, path, token, body)
	require.Equal(a.t, wantStatus, status, "%s %s: %s", method, path, out)
	if dst != nil {
		require.NoError(a.t, json.Unmarshal(out, dst))
	}
}

func (a *testAPI) message(wantStatus int, method, path, token string, body any) string {
	a.t.Helper()
	var e errorResponse
	a.expect(wantStatus, method, path, token, body, &e)
	return e.Message
}

type session struct {
	token string
	user  userView
}

// signup registers and logs in a user.
func (a *testAPI) signup(username string) session {
	a.t.Helper()
	a.expect(http.StatusCreated, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	}, nil)
	return a.login(username, "secret123")
}

func (a *testAPI) login(username, password string) session {
	a.t.Helper()
	var resp struct {
		AccessToken  string   `json:"accessToken"`
		RefreshToken string   `json:"refreshToken"`
		User         userView `json:"user"`
	}
	a.expect(http.StatusOK, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	return session{token: resp.AccessToken, user: resp.User}
}

func (a *testAPI) admin(username string) session {
	a.t.Helper()
	_, _, err := a.users.EnsureAdmin(context.Background(), username, username+"@example.com", "secret123")
	require.NoError(a.t, err)
	return a.login(username, "secret123")
}
