package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/domain"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/service"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/session"
)

type stubUsers struct {
	mu      sync.Mutex
	byEmail map[string]domain.UserRecord
}

func (s *stubUsers) Create(ctx context.Context, rec domain.UserRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[rec.Email]; ok {
		return "", domain.ErrEmailTaken
	}
	rec.ID = "id-" + rec.Email
	s.byEmail[rec.Email] = rec
	return rec.ID, nil
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &rec, nil
}

func (s *stubUsers) AdminEmails(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for email, rec := range s.byEmail {
		if rec.Role == domain.RoleAdmin {
			out = append(out, email)
		}
	}
	return out, nil
}

func (s *stubUsers) UpdatePassword(ctx context.Context, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	rec.PasswordHash = hash
	s.byEmail[email] = rec
	return nil
}

type stubAllowlist struct {
	mu     sync.Mutex
	emails map[string]bool
}

func (s *stubAllowlist) Add(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails[email] = true
	return nil
}

func (s *stubAllowlist) Remove(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.emails, email)
	return nil
}

func (s *stubAllowlist) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.emails))
	for e := range s.emails {
		out = append(out, e)
	}
	return out, nil
}

func (s *stubAllowlist) Contains(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emails[email], nil
}

type dropRecorder struct {
	mu      sync.Mutex
	dropped []string
}

func (d *dropRecorder) Drop(email string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropped = append(d.dropped, email)
}

type authEnv struct {
	router *gin.Engine
	users  *stubUsers
	allow  *stubAllowlist
	drops  *dropRecorder
}

func setupAuthRouter(t *testing.T) *authEnv {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sessions := session.NewStore(client, "test-secret", time.Hour, 5, 15*time.Minute)
	users := &stubUsers{byEmail: map[string]domain.UserRecord{}}
	allow := &stubAllowlist{emails: map[string]bool{"juan@g.batstate-u.edu.ph": true}}
	drops := &dropRecorder{}

	svc := service.NewAuthService(users, allow, sessions)
	h := NewHandler(svc, drops)

	router := gin.New()
	h.Register(router.Group("/api/v1/auth"), sessions)
	return &authEnv{router: router, users: users, allow: allow, drops: drops}
}

func (e *authEnv) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *authEnv) registerAndLogin(t *testing.T) string {
	t.Helper()
	rr := e.do(t, "POST", "/api/v1/auth/register", gin.H{
		"display_name":      "Juan Dela Cruz",
		"email":             "juan@g.batstate-u.edu.ph",
		"password":          "secret1",
		"security_question": domain.SecurityQuestions[0],
		"security_answer":   "Santos",
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = e.do(t, "POST", "/api/v1/auth/login", gin.H{
		"email":    "juan@g.batstate-u.edu.ph",
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionToken)
	return resp.SessionToken
}

func sessionHeaders(email, token string) map[string]string {
	return map[string]string{
		"Authorization":   "Bearer " + token,
		"X-Session-Email": email,
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := setupAuthRouter(t)
	token := env.registerAndLogin(t)
	assert.NotEmpty(t, token)

	t.Run("wrong password", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/v1/auth/login", gin.H{
			"email": "juan@g.batstate-u.edu.ph", "password": "nope",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unauthorized email", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/v1/auth/login", gin.H{
			"email": "stranger@gmail.com", "password": "whatever",
		}, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString("{"))
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLockoutEndpoint(t *testing.T) {
	env := setupAuthRouter(t)
	env.registerAndLogin(t)

	for i := 0; i < 4; i++ {
		rr := env.do(t, "POST", "/api/v1/auth/login", gin.H{
			"email": "juan@g.batstate-u.edu.ph", "password": "nope",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}

	rr := env.do(t, "POST", "/api/v1/auth/login", gin.H{
		"email": "juan@g.batstate-u.edu.ph", "password": "nope",
	}, nil)
	assert.Equal(t, http.StatusLocked, rr.Code)
}

func TestValidateAndLogout(t *testing.T) {
	env := setupAuthRouter(t)
	token := env.registerAndLogin(t)
	headers := sessionHeaders("juan@g.batstate-u.edu.ph", token)

	rr := env.do(t, "GET", "/api/v1/auth/validate", nil, headers)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Valid bool `json:"valid"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "juan@g.batstate-u.edu.ph", resp.User.Email)
	assert.Equal(t, domain.RoleInstructor, resp.User.Role)

	rr = env.do(t, "POST", "/api/v1/auth/logout", nil, headers)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"juan@g.batstate-u.edu.ph"}, env.drops.dropped,
		"logout drops the collection manager")

	rr = env.do(t, "GET", "/api/v1/auth/validate", nil, headers)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestValidateRequiresHeaders(t *testing.T) {
	env := setupAuthRouter(t)
	token := env.registerAndLogin(t)

	rr := env.do(t, "GET", "/api/v1/auth/validate", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, "GET", "/api/v1/auth/validate", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "token without the email header is rejected")
}

func TestPasswordResetEndpoints(t *testing.T) {
	env := setupAuthRouter(t)
	env.registerAndLogin(t)

	rr := env.do(t, "GET", "/api/v1/auth/security-questions", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var qs struct {
		Questions []string `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &qs))
	assert.Equal(t, domain.SecurityQuestions, qs.Questions)

	rr = env.do(t, "POST", "/api/v1/auth/security-question", gin.H{"email": "juan@g.batstate-u.edu.ph"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "POST", "/api/v1/auth/verify-answer", gin.H{
		"email": "juan@g.batstate-u.edu.ph", "answer": "wrong",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, "POST", "/api/v1/auth/verify-answer", gin.H{
		"email": "juan@g.batstate-u.edu.ph", "answer": "santos",
	}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "POST", "/api/v1/auth/reset-password", gin.H{
		"email": "juan@g.batstate-u.edu.ph", "new_password": "newsecret",
	}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "POST", "/api/v1/auth/login", gin.H{
		"email": "juan@g.batstate-u.edu.ph", "password": "newsecret",
	}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAllowlistEndpoints(t *testing.T) {
	env := setupAuthRouter(t)

	// Seed an admin account directly; self-registration cannot create one.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	env.users.byEmail["dean@g.batstate-u.edu.ph"] = domain.UserRecord{
		ID: "admin-1", Email: "dean@g.batstate-u.edu.ph", DisplayName: "Dean",
		Role: domain.RoleAdmin, PasswordHash: string(hash),
	}
	env.allow.emails["dean@g.batstate-u.edu.ph"] = true

	rr := env.do(t, "POST", "/api/v1/auth/login", gin.H{
		"email": "dean@g.batstate-u.edu.ph", "password": "admin-pass",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	adminHeaders := sessionHeaders("dean@g.batstate-u.edu.ph", resp.SessionToken)

	rr = env.do(t, "POST", "/api/v1/auth/allowlist", gin.H{"email": "new@g.batstate-u.edu.ph"}, adminHeaders)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "GET", "/api/v1/auth/allowlist", nil, adminHeaders)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Emails []string `json:"emails"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Contains(t, list.Emails, "new@g.batstate-u.edu.ph")

	rr = env.do(t, "DELETE", "/api/v1/auth/allowlist/new@g.batstate-u.edu.ph", nil, adminHeaders)
	assert.Equal(t, http.StatusOK, rr.Code)

	t.Run("instructor is forbidden", func(t *testing.T) {
		token := env.registerAndLogin(t)
		rr := env.do(t, "POST", "/api/v1/auth/allowlist", gin.H{"email": "x@y.ph"},
			sessionHeaders("juan@g.batstate-u.edu.ph", token))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
