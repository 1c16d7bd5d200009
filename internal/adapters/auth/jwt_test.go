package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRoundTrip(t *testing.T) {
	r := NewJWTResolver("secret", "accounts")
	token, err := r.Issue(domain.Identity{ID: "u-1", Name: "Ann"}, time.Hour)
	require.NoError(t, err)

	id, err := r.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: "u-1", Name: "Ann"}, id)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	r := NewJWTResolver("secret", "")

	expired, err := r.Issue(domain.Identity{ID: "u-1"}, -time.Minute)
	require.NoError(t, err)
	foreign, err := NewJWTResolver("other", "").Issue(domain.Identity{ID: "u-1"}, time.Hour)
	require.NoError(t, err)
	noSubject, err := r.Issue(domain.Identity{}, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":      "",
		"garbage":    "not.a.jwt",
		"expired":    expired,
		"foreign":    foreign,
		"no subject": noSubject,
		"alg none":   none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestResolveChecksIssuer(t *testing.T) {
	token, err := NewJWTResolver("secret", "someone-else").Issue(domain.Identity{ID: "u-1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTResolver("secret", "accounts").Resolve(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/ws/signal?access_token=from-query", nil)
	assert.Equal(t, "from-query", TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(req))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(req))
}
