package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongKey = "tangerine-Lighthouse-47-orbit!"

func TestNewAdminKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		err  error
	}{
		{name: "empty", key: "", err: ErrEmptyAdminKey},
		{name: "short", key: "abc123", err: ErrShortAdminKey},
		{name: "weak", key: "passwordpassword", err: ErrWeakAdminKey},
		{name: "strong", key: strongKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdminKey(tt.key, bcrypt.MinCost)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAdminKeyVerify(t *testing.T) {
	key, err := NewAdminKey(strongKey, bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, key.Verify(strongKey))
	assert.False(t, key.Verify(""))
	assert.False(t, key.Verify("tangerine-Lighthouse-47-orbit"))

	var missing *AdminKey
	assert.False(t, missing.Verify(strongKey))
}
