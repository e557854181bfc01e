package authsdk

import "time"

// ============================================================================
// Envelope
// ============================================================================

// Envelope is the body of every API response. On success Data is set and
// Error is nil; on failure Data is nil and Error describes the problem.
type Envelope[T any] struct {
	// Data is the operation payload, nil on failure or for operations with no payload
	Data *T `json:"data"`

	// StatusCode mirrors the HTTP status code
	StatusCode int `json:"status_code"`

	// IsSuccessful is true when the operation succeeded
	IsSuccessful bool `json:"is_successful"`

	// Error is set on failure
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed operation.
type ErrorDetail struct {
	// Message is a short description of the failure
	Message string `json:"message"`

	// IsUserVisible reports whether Message is safe to show an end user verbatim
	IsUserVisible bool `json:"is_user_visible"`
}

// NoData is the payload type for operations that return nothing.
type NoData struct{}

// ============================================================================
// Token Types
// ============================================================================

// LoginRequest is the body of POST /v1/auth/token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ClientTokenRequest is the body of POST /v1/auth/token/client.
type ClientTokenRequest struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// RefreshTokenRequest is the body of POST /v1/auth/token/refresh and
// POST /v1/auth/token/revoke.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is returned by the login and refresh endpoints.
type TokenPair struct {
	// AccessToken is the signed JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// AccessTokenExpiresAt is when the access token stops being accepted
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`

	// RefreshToken is the opaque value redeemed at the refresh endpoint
	RefreshToken string `json:"refresh_token"`

	// RefreshTokenExpiresAt is when the refresh token can no longer be redeemed
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// ClientToken is returned by the client credentials endpoint. Machine
// clients never receive a refresh token.
type ClientToken struct {
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}

// ============================================================================
// User Types
// ============================================================================

// RegisterRequest is the body of POST /v1/users.
type RegisterRequest struct {
	// Email is the login identifier, compared case-insensitively
	Email string `json:"email" validate:"required,email,max=254"`

	// UserName is the display name (2-64 chars)
	UserName string `json:"user_name" validate:"required,min=2,max=64"`

	// Password is the plaintext password (8-128 chars)
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// User is the public view of an account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"user_name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`
}
