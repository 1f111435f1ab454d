package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t testing.TB) TokenService {
	service, err := NewTokenService(15*time.Minute, "test-issuer", "test-audience", testSecret)
	require.NoError(t, err)
	return service
}

func signClaims(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":        "ops",
		"token_type": adminTokenType,
		"jti":        "abc",
		"iat":        now.Unix(),
		"exp":        now.Add(time.Hour).Unix(),
		"iss":        "test-issuer",
		"aud":        "test-audience",
	}
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		ttl         time.Duration
		secretKey   string
		expectError bool
	}{
		{name: "valid configuration", ttl: 15 * time.Minute, secretKey: testSecret},
		{name: "missing secret key", ttl: 15 * time.Minute, secretKey: "", expectError: true},
		{name: "zero ttl falls back to default", ttl: 0, secretKey: testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(tt.ttl, "test-issuer", "test-audience", tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, service)
		})
	}
}

func TestGenerateAndValidateAdminToken(t *testing.T) {
	service := createTestTokenService(t)

	token, err := service.GenerateAdminToken(" ops ")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, adminTokenType, claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	assert.WithinDuration(t, claims.IssuedAt.Add(15*time.Minute), claims.ExpiresAt, time.Second)

	_, err = service.GenerateAdminToken("  ")
	assert.Error(t, err)
}

func TestValidateAdminToken_Rejects(t *testing.T) {
	service := createTestTokenService(t)

	expired := validClaims()
	expired["iat"] = time.Now().Add(-2 * time.Hour).Unix()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongType := validClaims()
	wrongType["token_type"] = "refresh"

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "someone-else"

	wrongAudience := validClaims()
	wrongAudience["aud"] = "customers"

	noSubject := validClaims()
	delete(noSubject, "sub")

	tests := []struct {
		name     string
		token    string
		expected error
	}{
		{name: "expired", token: signClaims(t, testSecret, expired), expected: ErrTokenExpired},
		{name: "wrong token type", token: signClaims(t, testSecret, wrongType), expected: ErrTokenInvalid},
		{name: "wrong issuer", token: signClaims(t, testSecret, wrongIssuer), expected: ErrTokenInvalid},
		{name: "wrong audience", token: signClaims(t, testSecret, wrongAudience), expected: ErrTokenInvalid},
		{name: "no subject", token: signClaims(t, testSecret, noSubject), expected: ErrTokenInvalid},
		{name: "other secret", token: signClaims(t, "another-secret-key-for-jwt-signing", validClaims()), expected: ErrTokenInvalid},
		{name: "empty token", token: "", expected: ErrTokenInvalid},
		{name: "non-JWT string", token: "this is not a jwt token", expected: ErrTokenInvalid},
		{name: "JWT with wrong number of parts", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJvcHMifQ", expected: ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAdminToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	// a correctly signed token with the expected claims passes
	claims, err := service.ValidateAdminToken(signClaims(t, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestTokenSecurity(t *testing.T) {
	service1, err := NewTokenService(15*time.Minute, "issuer1", "audience1", "test-secret-key-1-for-jwt-signing-32-chars")
	require.NoError(t, err)
	service2, err := NewTokenService(15*time.Minute, "issuer2", "audience2", "test-secret-key-2-for-jwt-signing-32-chars")
	require.NoError(t, err)

	token1, err := service1.GenerateAdminToken("ops")
	require.NoError(t, err)
	token2, err := service2.GenerateAdminToken("ops")
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)

	// Tokens from one service should not be valid in another service
	_, err = service1.ValidateAdminToken(token2)
	assert.Error(t, err)
	_, err = service2.ValidateAdminToken(token1)
	assert.Error(t, err)
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service := createTestTokenService(t)

	const numGoroutines = 10
	tokens := make(chan string, numGoroutines)
	errs := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			token, err := service.GenerateAdminToken("ops")
			if err != nil {
				errs <- err
				return
			}
			tokens <- token
		}()
	}

	generated := make(map[string]bool)
	for i := 0; i < numGoroutines; i++ {
		select {
		case token := <-tokens:
			assert.False(t, generated[token], "Duplicate token generated")
			generated[token] = true
		case err := <-errs:
			t.Errorf("Error generating token: %v", err)
		}
	}
	assert.Len(t, generated, numGoroutines)
}

func BenchmarkValidateAdminToken(b *testing.B) {
	service := createTestTokenService(b)
	token, err := service.GenerateAdminToken("ops")
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := service.ValidateAdminToken(token)
		require.NoError(b, err)
	}
}
