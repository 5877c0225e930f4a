package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key-for-predictable-results"

func TestTokenManager_GenerateToken(t *testing.T) {
	tests := []struct {
		name     string
		userID   int64
		username string
		ttl      time.Duration
	}{
		{
			name:     "success: generate valid token",
			userID:   1,
			username: "alice",
			ttl:      time.Hour,
		},
		{
			name:     "success: short lived token",
			userID:   42,
			username: "bob",
			ttl:      30 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTokenManager(testSecretKey, tt.ttl)

			tokenString, err := m.GenerateToken(tt.userID, tt.username)
			require.NoError(t, err)
			require.NotEmpty(t, tokenString)

			claims, err := m.VerifyToken(tokenString)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.username, claims.Username)
			assert.NotEmpty(t, claims.ID)
			assert.WithinDuration(t, time.Now().Add(tt.ttl), claims.ExpiresAt.Time, time.Second*5)
		})
	}
}

func TestTokenManager_VerifyToken(t *testing.T) {
	m := NewTokenManager(testSecretKey, time.Hour)

	validToken, _ := m.GenerateToken(1, "alice")

	expired := NewTokenManager(testSecretKey, -time.Hour)
	expiredToken, _ := expired.GenerateToken(1, "alice")

	otherSecret := NewTokenManager("a-completely-different-secret", time.Hour)
	foreignToken, _ := otherSecret.GenerateToken(1, "alice")

	noneToken := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{
		UserID:   1,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsignedToken, _ := noneToken.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name        string
		tokenString string
		wantErr     bool
		wantUserID  int64
	}{
		{
			name:        "valid token",
			tokenString: validToken,
			wantUserID:  1,
		},
		{
			name:        "expired token",
			tokenString: expiredToken,
			wantErr:     true,
		},
		{
			name:        "token signed with another secret",
			tokenString: foreignToken,
			wantErr:     true,
		},
		{
			name:        "unsigned token",
			tokenString: unsignedToken,
			wantErr:     true,
		},
		{
			name:        "garbage",
			tokenString: "not-a-token",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.VerifyToken(tt.tokenString)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUserID, claims.UserID)
			}
		})
	}
}
