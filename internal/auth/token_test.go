package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	signed, err := issuer.Issue(42)
	require.NoError(t, err)

	userID, err := issuer.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer.WithNow(func() time.Time { return base })
	signed, err := issuer.Issue(42)
	require.NoError(t, err)

	issuer.WithNow(func() time.Time { return base.Add(2 * time.Minute) })
	_, err = issuer.Verify(signed)
	require.ErrorIs(t, err, httpx.ErrTokenExpired)
}

func TestTokenMalformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not-a-token")
	require.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	signed, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = other.Verify(signed)
	require.ErrorIs(t, err, httpx.ErrUnauthenticated)
}
