package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/domain"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/session"
)

// UserStore is the account persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, rec domain.UserRecord) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserRecord, error)
	AdminEmails(ctx context.Context) ([]string, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// Allowlist is the set of emails permitted to register and log in.
type Allowlist interface {
	Add(ctx context.Context, email string) error
	Remove(ctx context.Context, email string) error
	List(ctx context.Context) ([]string, error)
	Contains(ctx context.Context, email string) (bool, error)
}

// AuthService implements the authentication RPC surface: login with
// lockout, allowlist-gated registration, session validation, the
// security-question password-reset flow, the admin-email lookup the
// ownership resolver depends on, and allowlist administration.
type AuthService struct {
	users    UserStore
	allow    Allowlist
	sessions *session.Store
}

func NewAuthService(users UserStore, allow Allowlist, sessions *session.Store) *AuthService {
	return &AuthService{users: users, allow: allow, sessions: sessions}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = normalize(email)

	allowed, err := s.allow.Contains(ctx, email)
	if err != nil || !allowed {
		// Lookup failures read as unauthorized rather than surfacing an
		// internal error at the login prompt.
		return domain.User{}, "", domain.ErrEmailNotAuthorized
	}

	if locked, err := s.sessions.Locked(ctx, email); err == nil && locked {
		return domain.User{}, "", domain.ErrAccountLocked
	}

	rec, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, "", s.failLogin(ctx, email)
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", s.failLogin(ctx, email)
	}

	_ = s.sessions.ClearFailures(ctx, email)

	user := rec.Public()
	token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

func (s *AuthService) failLogin(ctx context.Context, email string) error {
	locked, err := s.sessions.RecordFailure(ctx, email)
	if err == nil && locked {
		return domain.ErrAccountLocked
	}
	return domain.ErrInvalidCredentials
}

// Register creates an Instructor account. The requested role is ignored:
// admins are provisioned out of band, never self-registered.
func (s *AuthService) Register(ctx context.Context, displayName, email, password, securityQuestion, securityAnswer string) (string, error) {
	displayName = strings.TrimSpace(displayName)
	email = normalize(email)
	securityAnswer = strings.TrimSpace(securityAnswer)

	if displayName == "" {
		return "", domain.ErrNameRequired
	}
	if len(password) < 6 {
		return "", domain.ErrWeakPassword
	}
	if securityAnswer == "" {
		return "", domain.ErrAnswerRequired
	}

	allowed, err := s.allow.Contains(ctx, email)
	if err != nil || !allowed {
		return "", domain.ErrEmailNotAuthorized
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	answerHash, err := bcrypt.GenerateFromPassword([]byte(normalize(securityAnswer)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return s.users.Create(ctx, domain.UserRecord{
		DisplayName:        displayName,
		Email:              email,
		Role:               domain.RoleInstructor,
		PasswordHash:       string(passHash),
		SecurityQuestion:   securityQuestion,
		SecurityAnswerHash: string(answerHash),
	})
}

func (s *AuthService) Logout(ctx context.Context, email, token string) error {
	return s.sessions.Destroy(ctx, email, token)
}

func (s *AuthService) Validate(ctx context.Context, email, token string) (*domain.Session, error) {
	return s.sessions.Validate(ctx, email, token)
}

// SecurityQuestion starts the password-reset flow.
func (s *AuthService) SecurityQuestion(ctx context.Context, email string) (string, error) {
	rec, err := s.users.GetByEmail(ctx, normalize(email))
	if err != nil {
		return "", err
	}
	return rec.SecurityQuestion, nil
}

func (s *AuthService) VerifySecurityAnswer(ctx context.Context, email, answer string) error {
	rec, err := s.users.GetByEmail(ctx, normalize(email))
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.SecurityAnswerHash), []byte(normalize(answer))) != nil {
		return domain.ErrAnswerIncorrect
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 6 {
		return domain.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, normalize(email), string(hash))
}

// AdminEmails is the ownership resolver's lookup: the emails considered
// Admin by the backend, in registration order, authenticated as the
// requesting identity.
func (s *AuthService) AdminEmails(ctx context.Context, requesterEmail, token string) ([]string, error) {
	if _, err := s.sessions.Validate(ctx, requesterEmail, token); err != nil {
		return nil, err
	}
	return s.users.AdminEmails(ctx)
}

func (s *AuthService) AllowlistAdd(ctx context.Context, adminEmail, token, email string) error {
	if err := s.requireAdmin(ctx, adminEmail, token); err != nil {
		return err
	}
	return s.allow.Add(ctx, email)
}

func (s *AuthService) AllowlistRemove(ctx context.Context, adminEmail, token, email string) error {
	if err := s.requireAdmin(ctx, adminEmail, token); err != nil {
		return err
	}
	return s.allow.Remove(ctx, email)
}

func (s *AuthService) AllowlistList(ctx context.Context, adminEmail, token string) ([]string, error) {
	if err := s.requireAdmin(ctx, adminEmail, token); err != nil {
		return nil, err
	}
	return s.allow.List(ctx)
}

func (s *AuthService) requireAdmin(ctx context.Context, email, token string) error {
	sess, err := s.sessions.Validate(ctx, email, token)
	if err != nil {
		return err
	}
	if sess.User.Role != domain.RoleAdmin {
		return domain.ErrAdminOnly
	}
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
