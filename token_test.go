package bookden

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(Config{
		TokenSecret:    "test-secret",
		TokenAlgorithm: "HS256",
		TokenLifetime:  time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRejectsBadConfig(t *testing.T) {
	_, err := NewTokenService(Config{
		TokenSecret:    "test-secret",
		TokenAlgorithm: "NOPE256",
		TokenLifetime:  time.Hour,
	})
	assert.Error(t, err)

	_, err = NewTokenService(Config{
		TokenSecret:    "test-secret",
		TokenAlgorithm: "HS256",
		TokenLifetime:  -time.Hour,
	})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Issue("alice", true)
	require.NoError(t, err)

	claims, status := svc.Verify(token)
	require.Equal(t, TokenValid, status)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, 1, claims.Administrator)
	assert.Greater(t, claims.Expire, time.Now().Unix())
}

func TestTokenExpiredIsNotInvalid(t *testing.T) {
	svc := newTestTokenService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Issue("alice", false)
	require.NoError(t, err)

	svc.now = time.Now
	claims, status := svc.Verify(token)
	assert.Equal(t, TokenExpired, status)
	assert.Nil(t, claims)
}

func TestTokenInvalid(t *testing.T) {
	svc := newTestTokenService(t)

	_, status := svc.Verify("not-a-token")
	assert.Equal(t, TokenInvalid, status)

	other, err := NewTokenService(Config{
		TokenSecret:    "other-secret",
		TokenAlgorithm: "HS256",
		TokenLifetime:  time.Hour,
	})
	require.NoError(t, err)
	token, err := other.Issue("alice", false)
	require.NoError(t, err)

	_, status = svc.Verify(token)
	assert.Equal(t, TokenInvalid, status)
}

func TestTokenWrongAlgorithmIsInvalid(t *testing.T) {
	hs512, err := NewTokenService(Config{
		TokenSecret:    "test-secret",
		TokenAlgorithm: "HS512",
		TokenLifetime:  time.Hour,
	})
	require.NoError(t, err)

	token, err := hs512.Issue("alice", false)
	require.NoError(t, err)

	// same secret, different configured method
	svc := newTestTokenService(t)
	_, status := svc.Verify(token)
	assert.Equal(t, TokenInvalid, status)
}

func TestTokenRefresh(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Issue("alice", true)
	require.NoError(t, err)

	fresh, status, err := svc.Refresh(token)
	require.NoError(t, err)
	require.Equal(t, TokenValid, status)

	claims, status := svc.Verify(fresh)
	require.Equal(t, TokenValid, status)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, 1, claims.Administrator)
}

func TestTokenRefreshExpiredAndInvalid(t *testing.T) {
	svc := newTestTokenService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.Issue("alice", false)
	require.NoError(t, err)
	svc.now = time.Now

	fresh, status, err := svc.Refresh(expired)
	require.NoError(t, err)
	assert.Equal(t, TokenExpired, status)
	assert.Empty(t, fresh)

	fresh, status, err = svc.Refresh("not-a-token")
	require.NoError(t, err)
	assert.Equal(t, TokenInvalid, status)
	assert.Empty(t, fresh)
}
