package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stokkas/stokkas/internal/auth"
	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
	_ "github.com/stokkas/stokkas/testing"
)

type stubRepo struct {
	mu       sync.Mutex
	users    map[string]*auth.User
	sessions map[string]time.Time
	nextID   int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[string]*auth.User{}, sessions: map[string]time.Time{}}
}

func (s *stubRepo) add(t *testing.T, username, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := s.CreateUser(context.Background(), username, string(hashed))
	require.NoError(t, err)
	return u
}

func (s *stubRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) CreateUser(_ context.Context, username, hash string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return nil, auth.ErrUsernameTaken
	}
	s.nextID++
	u := &auth.User{ID: s.nextID, Username: username, PasswordHash: hash, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.users[username] = u
	return u, nil
}

func (s *stubRepo) CreateSession(_ context.Context, id string, _ int64, expiresAt time.Time, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = expiresAt
	return nil
}

func (s *stubRepo) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *stubRepo) PurgeExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, exp := range s.sessions {
		if exp.Before(before) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func newAuthRouter(t *testing.T, repo auth.Repository) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p, err := sessionManager.Load(req.Context(), req)
			if err == nil && p != nil {
				req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api", func(r chi.Router) {
		handler.MountPublicRoutes(r)
		handler.MountRoutes(r)
	})
	return r, sessionManager
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, httpx.Result) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	var out httpx.Result
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	return res, out
}

func TestLoginSetsSessionCookie(t *testing.T) {
	repo := newStubRepo()
	repo.add(t, "admin", "correctpass")
	router, sessionManager := newAuthRouter(t, repo)

	res, body := doJSON(t, router, http.MethodPost, "/api/login", `{"username":"admin","password":"correctpass"}`, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "Login sukses", body.Message)

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionManager.CookieName(), cookies[0].Name)
	assert.Len(t, repo.sessions, 1)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	repo.add(t, "admin", "correctpass")
	router, _ := newAuthRouter(t, repo)

	res, body := doJSON(t, router, http.MethodPost, "/api/login", `{"username":"admin","password":"wrongpass"}`, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "username atau password anda salah", body.Message)

	res, _ = doJSON(t, router, http.MethodPost, "/api/login", `{"username":"ghost","password":"whatever"}`, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginMissingFields(t *testing.T) {
	router, _ := newAuthRouter(t, newStubRepo())

	res, body := doJSON(t, router, http.MethodPost, "/api/login", `{"username":"admin"}`, nil)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, body.Message, "password")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	repo := newStubRepo()
	repo.add(t, "admin", "correctpass")
	router, _ := newAuthRouter(t, repo)

	res, body := doJSON(t, router, http.MethodPost, "/api/register", `{"username":"kasir","password":"longenough"}`, nil)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.True(t, body.Success)

	res, body = doJSON(t, router, http.MethodPost, "/api/register", `{"username":"admin","password":"longenough"}`, nil)
	require.Equal(t, http.StatusConflict, res.Code)
	assert.Contains(t, body.Message, "username telah digunakan")
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	router, _ := newAuthRouter(t, newStubRepo())

	res, _ := doJSON(t, router, http.MethodPost, "/api/register", `{"username":"kasir","password":"short"}`, nil)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestProfileAndLogout(t *testing.T) {
	repo := newStubRepo()
	user := repo.add(t, "admin", "correctpass")
	router, _ := newAuthRouter(t, repo)

	loginRes, _ := doJSON(t, router, http.MethodPost, "/api/login", `{"username":"admin","password":"correctpass"}`, nil)
	cookies := loginRes.Result().Cookies()

	res, body := doJSON(t, router, http.MethodGet, "/api/profile", "", cookies)
	require.Equal(t, http.StatusOK, res.Code)
	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, user.Username, data["username"])
	assert.NotContains(t, data, "password")

	res, _ = doJSON(t, router, http.MethodGet, "/api/logout", "", cookies)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, repo.sessions)

	res, _ = doJSON(t, router, http.MethodGet, "/api/profile", "", cookies)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
