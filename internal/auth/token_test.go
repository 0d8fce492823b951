package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	ts := NewTokenService("test-secret", 24*time.Hour)

	identity := Identity{UserID: 42, Email: "user@example.com", Role: "user"}
	token, err := ts.Issue(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verified, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, verified.UserID)
	assert.Equal(t, identity.Email, verified.Email)
	assert.Equal(t, identity.Role, verified.Role)
}

func TestVerifyExpiredToken(t *testing.T) {
	ts := NewTokenService("test-secret", -time.Hour)

	token, err := ts.Issue(Identity{UserID: 1, Email: "a@b.c", Role: "user"})
	require.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour)
	verifier := NewTokenService("secret-two", time.Hour)

	token, err := issuer.Issue(Identity{UserID: 1, Email: "a@b.c", Role: "user"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyMalformedToken(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := ts.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)

	token, err := ts.Issue(Identity{UserID: 1, Email: "a@b.c", Role: "user"})
	require.NoError(t, err)

	tampered := token + "xx"
	_, err = ts.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
