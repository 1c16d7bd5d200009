package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the account id in "sub" and the display name in "name".
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver validates HS256 access tokens issued by the account service.
type JWTResolver struct {
	secret []byte
	parser *jwt.Parser
	issuer string
}

func NewJWTResolver(secret, issuer string) *JWTResolver {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTResolver{secret: []byte(secret), parser: jwt.NewParser(opts...), issuer: issuer}
}

func (r *JWTResolver) Resolve(tokenString string) (domain.Identity, error) {
	if tokenString == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	claims := &Claims{}
	token, err := r.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return domain.Identity{}, errors.Join(domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return domain.Identity{}, domain.ErrUnauthorized
	}

	id, err := domain.NewIdentity(claims.Subject, claims.Name)
	if err != nil {
		return domain.Identity{}, errors.Join(domain.ErrUnauthorized, err)
	}
	return id, nil
}

// Issue signs a token for id. Used by tests and local tooling.
func (r *JWTResolver) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			Issuer:    r.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// TokenFromRequest reads a bearer token from the Authorization header or,
// for browser WebSocket upgrades, the access_token query parameter.
func TokenFromRequest(req *http.Request) string {
	if h := req.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return req.URL.Query().Get("access_token")
}
