package domain

import "time"

// Client is a trusted machine caller loaded from configuration at startup.
type Client struct {
	ID                     string
	Secret                 string
	AllowedLifetimeMinutes int
}

// Lifetime is how long access tokens issued to this client stay valid.
func (c Client) Lifetime() time.Duration {
	return time.Duration(c.AllowedLifetimeMinutes) * time.Minute
}

// ClientLogin is the credential pair presented in the client flow.
type ClientLogin struct {
	ClientID     string
	ClientSecret string
}
