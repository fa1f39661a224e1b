package i

import (
	"context"
	"time"
)

// Authenticator signs players in by name.
type Authenticator interface {
	// SignIn makes name the current player and returns a session token.
	SignIn(ctx context.Context, name string) (string, error)
}

// CurrentUserStore remembers who is playing on this installation.
type CurrentUserStore interface {
	SetCurrentUser(ctx context.Context, name string) error

	// CurrentUser returns "" when nobody signed in yet.
	CurrentUser(ctx context.Context) string
}

// Tokenizer issues and checks the signed session tokens handed out by
// SignIn.
type Tokenizer interface {
	// Generate signs claims with a lifetime of ttl.
	Generate(claims map[string]interface{}, ttl time.Duration) (string, error)

	// Decode rejects expired, foreign and tampered tokens.
	Decode(token string) (map[string]interface{}, error)
}
