package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/taskhub-api/internal/config"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

func newTestService(t *testing.T, lifetimeMinutes int) *hmacJWTService {
	t.Helper()

	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: lifetimeMinutes,
	})
	require.NoError(t, err)

	return svc.(*hmacJWTService)
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "tooshort",
		TokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestValidateTokenFailures(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	userID := uuid.New()

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ValidateToken(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		t.Parallel()

		other := newTestService(t, 60)
		other.signingKey = []byte("anothersecretkeythatis32charslong!!!")

		token, err := other.GenerateToken(context.Background(), userID)
		require.NoError(t, err)

		_, err = svc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		expired := newTestService(t, 60)
		issueTime := time.Now().Add(-2 * time.Hour)
		expired.timeFunc = func() time.Time { return issueTime }

		token, err := expired.GenerateToken(context.Background(), userID)
		require.NoError(t, err)

		// Validate with real time, well past expiry plus clock skew.
		expired.timeFunc = time.Now
		_, err = expired.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestClockSkewTolerance(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 1)
	userID := uuid.New()

	issueTime := time.Now()
	svc.timeFunc = func() time.Time { return issueTime }

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	// One minute lifetime plus two minutes skew: still valid at +2m30s.
	svc.timeFunc = func() time.Time { return issueTime.Add(2*time.Minute + 30*time.Second) }
	_, err = svc.ValidateToken(context.Background(), token)
	assert.NoError(t, err)

	// Past the skew window the token is rejected.
	svc.timeFunc = func() time.Time { return issueTime.Add(4 * time.Minute) }
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
