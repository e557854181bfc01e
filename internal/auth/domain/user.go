package domain

import (
	"strings"
	"time"
)

// RoleUser is granted to every registered user.
const RoleUser = "user"

type User struct {
	ID           string
	Email        string // stored lower-cased, unique
	UserName     string
	PasswordHash string // argon2id PHC string, or bcrypt for imported accounts
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Login is the password credential presented in the login flow.
type Login struct {
	Email    string
	Password string
}

// Registration is the input for creating a new user account.
type Registration struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	UserName string `json:"user_name" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// NormalizeEmail is applied before every email lookup or insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
