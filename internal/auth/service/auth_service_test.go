package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/domain"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/session"
)

type memUsers struct {
	byEmail map[string]domain.UserRecord
	order   []string
	nextID  int
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]domain.UserRecord{}}
}

func (m *memUsers) Create(ctx context.Context, rec domain.UserRecord) (string, error) {
	if _, ok := m.byEmail[rec.Email]; ok {
		return "", domain.ErrEmailTaken
	}
	m.nextID++
	rec.ID = time.Now().Format("20060102") + "-" + rec.Email
	rec.CreatedAt = time.Now().UTC()
	m.byEmail[rec.Email] = rec
	m.order = append(m.order, rec.Email)
	return rec.ID, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	rec, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &rec, nil
}

func (m *memUsers) AdminEmails(ctx context.Context) ([]string, error) {
	var out []string
	for _, email := range m.order {
		if m.byEmail[email].Role == domain.RoleAdmin {
			out = append(out, email)
		}
	}
	return out, nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, email, hash string) error {
	rec, ok := m.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	rec.PasswordHash = hash
	m.byEmail[email] = rec
	return nil
}

func (m *memUsers) seedAdmin(email string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	m.byEmail[email] = domain.UserRecord{
		ID: email, Email: email, DisplayName: "Admin", Role: domain.RoleAdmin,
		PasswordHash: string(hash),
	}
	m.order = append(m.order, email)
}

type memAllowlist struct {
	emails map[string]bool
}

func newMemAllowlist(emails ...string) *memAllowlist {
	m := &memAllowlist{emails: map[string]bool{}}
	for _, e := range emails {
		m.emails[e] = true
	}
	return m
}

func (m *memAllowlist) Add(ctx context.Context, email string) error {
	m.emails[email] = true
	return nil
}

func (m *memAllowlist) Remove(ctx context.Context, email string) error {
	delete(m.emails, email)
	return nil
}

func (m *memAllowlist) List(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(m.emails))
	for e := range m.emails {
		out = append(out, e)
	}
	return out, nil
}

func (m *memAllowlist) Contains(ctx context.Context, email string) (bool, error) {
	return m.emails[email], nil
}

func setupService(t *testing.T, allowed ...string) (*AuthService, *memUsers, *memAllowlist) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sessions := session.NewStore(client, "test-secret", time.Hour, 5, 15*time.Minute)
	users := newMemUsers()
	allow := newMemAllowlist(allowed...)
	return NewAuthService(users, allow, sessions), users, allow
}

const testEmail = "juan@g.batstate-u.edu.ph"

func register(t *testing.T, svc *AuthService) {
	t.Helper()
	_, err := svc.Register(context.Background(), "Juan Dela Cruz", testEmail, "secret1",
		"What is your mother's maiden name?", "Santos")
	require.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users, _ := setupService(t, testEmail)
	ctx := context.Background()

	register(t, svc)

	rec := users.byEmail[testEmail]
	assert.Equal(t, domain.RoleInstructor, rec.Role, "self-registration never grants Admin")
	assert.NotEqual(t, "secret1", rec.PasswordHash)

	user, token, err := svc.Login(ctx, "  Juan@G.BatState-U.edu.ph ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, testEmail, user.Email)
	assert.NotEmpty(t, token)

	sess, err := svc.Validate(ctx, testEmail, token)
	require.NoError(t, err)
	assert.Equal(t, "Juan Dela Cruz", sess.User.DisplayName)

	require.NoError(t, svc.Logout(ctx, testEmail, token))
	_, err = svc.Validate(ctx, testEmail, token)
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := setupService(t, testEmail)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", testEmail, "secret1", "q", "a")
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = svc.Register(ctx, "Juan", testEmail, "short", "q", "a")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = svc.Register(ctx, "Juan", testEmail, "secret1", "q", "   ")
	assert.ErrorIs(t, err, domain.ErrAnswerRequired)

	_, err = svc.Register(ctx, "Juan", "stranger@gmail.com", "secret1", "q", "a")
	assert.ErrorIs(t, err, domain.ErrEmailNotAuthorized)
}

func TestLoginRejections(t *testing.T) {
	svc, _, _ := setupService(t, testEmail)
	ctx := context.Background()
	register(t, svc)

	t.Run("unauthorized email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "stranger@gmail.com", "whatever")
		assert.ErrorIs(t, err, domain.ErrEmailNotAuthorized)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, testEmail, "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user on the allowlist", func(t *testing.T) {
		svc2, _, _ := setupService(t, "listed@g.batstate-u.edu.ph")
		_, _, err := svc2.Login(ctx, "listed@g.batstate-u.edu.ph", "whatever")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestLoginLockout(t *testing.T) {
	svc, _, _ := setupService(t, testEmail)
	ctx := context.Background()
	register(t, svc)

	var err error
	for i := 0; i < 4; i++ {
		_, _, err = svc.Login(ctx, testEmail, "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	_, _, err = svc.Login(ctx, testEmail, "wrong")
	assert.ErrorIs(t, err, domain.ErrAccountLocked, "fifth failure locks")

	_, _, err = svc.Login(ctx, testEmail, "secret1")
	assert.ErrorIs(t, err, domain.ErrAccountLocked, "correct password does not bypass the lock")
}

func TestLoginClearsFailures(t *testing.T) {
	svc, _, _ := setupService(t, testEmail)
	ctx := context.Background()
	register(t, svc)

	for i := 0; i < 3; i++ {
		_, _, _ = svc.Login(ctx, testEmail, "wrong")
	}

	_, _, err := svc.Login(ctx, testEmail, "secret1")
	require.NoError(t, err, "success under the threshold clears the counter")

	for i := 0; i < 4; i++ {
		_, _, err = svc.Login(ctx, testEmail, "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _ := setupService(t, testEmail)
	ctx := context.Background()
	register(t, svc)

	q, err := svc.SecurityQuestion(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, "What is your mother's maiden name?", q)

	assert.ErrorIs(t, svc.VerifySecurityAnswer(ctx, testEmail, "wrong"), domain.ErrAnswerIncorrect)
	assert.NoError(t, svc.VerifySecurityAnswer(ctx, testEmail, "  SANTOS  "), "answers compare case-insensitively")

	assert.ErrorIs(t, svc.ResetPassword(ctx, testEmail, "tiny"), domain.ErrWeakPassword)
	require.NoError(t, svc.ResetPassword(ctx, testEmail, "newsecret"))

	_, _, err = svc.Login(ctx, testEmail, "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, testEmail, "newsecret")
	assert.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SecurityQuestion(ctx, "ghost@g.batstate-u.edu.ph")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestAdminEmailsRequiresSession(t *testing.T) {
	svc, users, allow := setupService(t, testEmail)
	ctx := context.Background()

	users.seedAdmin("dean@g.batstate-u.edu.ph")
	users.seedAdmin("vice@g.batstate-u.edu.ph")
	allow.emails[testEmail] = true
	register(t, svc)

	_, token, err := svc.Login(ctx, testEmail, "secret1")
	require.NoError(t, err)

	admins, err := svc.AdminEmails(ctx, testEmail, token)
	require.NoError(t, err)
	assert.Equal(t, []string{"dean@g.batstate-u.edu.ph", "vice@g.batstate-u.edu.ph"}, admins,
		"registration order is preserved")

	_, err = svc.AdminEmails(ctx, testEmail, "forged-token")
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
}

func TestAllowlistAdminGate(t *testing.T) {
	svc, users, allow := setupService(t, testEmail, "dean@g.batstate-u.edu.ph")
	ctx := context.Background()

	users.seedAdmin("dean@g.batstate-u.edu.ph")
	register(t, svc)

	_, instrToken, err := svc.Login(ctx, testEmail, "secret1")
	require.NoError(t, err)
	_, adminToken, err := svc.Login(ctx, "dean@g.batstate-u.edu.ph", "admin-pass")
	require.NoError(t, err)

	err = svc.AllowlistAdd(ctx, testEmail, instrToken, "new@g.batstate-u.edu.ph")
	assert.ErrorIs(t, err, domain.ErrAdminOnly)

	require.NoError(t, svc.AllowlistAdd(ctx, "dean@g.batstate-u.edu.ph", adminToken, "new@g.batstate-u.edu.ph"))
	assert.True(t, allow.emails["new@g.batstate-u.edu.ph"])

	list, err := svc.AllowlistList(ctx, "dean@g.batstate-u.edu.ph", adminToken)
	require.NoError(t, err)
	assert.Contains(t, list, "new@g.batstate-u.edu.ph")

	require.NoError(t, svc.AllowlistRemove(ctx, "dean@g.batstate-u.edu.ph", adminToken, "new@g.batstate-u.edu.ph"))
	assert.False(t, allow.emails["new@g.batstate-u.edu.ph"])
}
