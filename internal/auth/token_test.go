package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, err := signer.Sign("dima")
	require.NoError(t, err)

	username, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "dima", username)
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, err := signer.Sign("dima")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// altered payload
	tampered := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx" + "." + parts[2]
	_, err = signer.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// altered signature
	tampered = parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])-2] + "xx"
	_, err = signer.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// signed with a different key
	other := NewSigner("other", time.Hour)
	otherToken, err := other.Sign("dima")
	require.NoError(t, err)
	_, err = signer.Verify(otherToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignerRejectsExpired(t *testing.T) {
	signer := NewSigner("secret", -time.Minute)
	token, err := signer.Sign("dima")
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash, "never stored in plaintext")

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "s3cret"))
}
