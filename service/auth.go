package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-snake/service/i"
)

const (
	defaultTokenTTL = 24 * time.Hour

	// PlayerNameClaim is the token claim holding the signed-in player name.
	PlayerNameClaim = "playerName"
)

var ErrNilTokenizer = errors.New("tokenizer must not be nil")

var _ i.Authenticator = &Auth{}

// Auth signs players in by name alone. There are no passwords: the name only
// picks whose scores are recorded.
type Auth struct {
	players   i.CurrentUserStore
	tokenizer i.Tokenizer
	logger    i.Logger
	tokenTTL  time.Duration
}

func NewAuth(players i.CurrentUserStore, tokenizer i.Tokenizer, logger i.Logger, tokenTTL time.Duration) (*Auth, error) {
	if players == nil {
		return nil, ErrNilLocalStore
	}
	if tokenizer == nil {
		return nil, ErrNilTokenizer
	}
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}

	return &Auth{
		players:   players,
		tokenizer: tokenizer,
		logger:    logger,
		tokenTTL:  tokenTTL,
	}, nil
}

// SignIn stores name as the current player and issues a token for it.
func (a *Auth) SignIn(ctx context.Context, name string) (string, error) {
	if err := a.players.SetCurrentUser(ctx, name); err != nil {
		return "", err
	}

	token, err := a.tokenizer.Generate(map[string]interface{}{
		PlayerNameClaim: name,
	}, a.tokenTTL)
	if err != nil {
		a.logger.Error(fmt.Sprintf("signing token for %q: %s", name, err))
		return "", err
	}

	a.logger.Info(fmt.Sprintf("player %q signed in", name))
	return token, nil
}
