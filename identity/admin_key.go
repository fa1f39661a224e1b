// Package identity guards the maintenance endpoints with an operator key.
package identity

import (
	"errors"

	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	minKeyStrengthScore = 3
	minKeyLength        = 12
)

var (
	ErrEmptyAdminKey = errors.New("admin key is empty")
	ErrShortAdminKey = errors.New("admin key too short")
	ErrWeakAdminKey  = errors.New("weak admin key")
)

// AdminKey holds the bcrypt hash of the operator key. The plain key is not
// retained.
type AdminKey struct {
	hash []byte
}

// NewAdminKey checks the strength of plain and hashes it with the given bcrypt
// cost. Costs outside bcrypt's range use bcrypt.DefaultCost.
func NewAdminKey(plain string, cost int) (*AdminKey, error) {
	if err := validateKey(plain); err != nil {
		return nil, err
	}

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return nil, err
	}

	return &AdminKey{hash: hash}, nil
}

// Verify reports whether candidate matches the stored key.
func (k *AdminKey) Verify(candidate string) bool {
	if k == nil || candidate == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(k.hash, []byte(candidate)) == nil
}

// validateKey checks length and zxcvbn strength.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyAdminKey
	}
	if len(key) < minKeyLength {
		return ErrShortAdminKey
	}
	result := zxcvbn.PasswordStrength(key, nil)
	if result.Score < minKeyStrengthScore {
		return ErrWeakAdminKey
	}
	return nil
}
