package domain

import "time"

// User is the client-visible identity. Role is baked in at login and not
// mutated except by re-login.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

const (
	RoleAdmin      = "Admin"
	RoleInstructor = "Instructor"
)

// Session pairs an identity with its opaque token. A session missing a
// user email or token, or past its TTL, is treated as absent.
type Session struct {
	User     User      `json:"user"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// UserRecord is the stored shape, credential hashes included. It never
// leaves the auth packages.
type UserRecord struct {
	ID                 string
	DisplayName        string
	Email              string
	Role               string
	PasswordHash       string
	SecurityQuestion   string
	SecurityAnswerHash string
	CreatedAt          time.Time
}

// Public strips credentials for API responses.
func (r *UserRecord) Public() User {
	return User{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Role:        r.Role,
	}
}

// SecurityQuestions are the fixed choices offered at registration.
var SecurityQuestions = []string{
	"What was the name of your first pet?",
	"What is your mother's maiden name?",
	"What city were you born in?",
	"What was the name of your elementary school?",
	"What is your favorite childhood movie?",
	"What was your childhood nickname?",
	"What is the name of the street you grew up on?",
}
