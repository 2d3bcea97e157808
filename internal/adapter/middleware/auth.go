// Package middleware provides the HTTP guards and request plumbing of the
// bookstore API.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// AuthHeader carries the bearer credential, with or without a "Bearer " prefix.
const AuthHeader = "Authorization"

var errMissingUserID = errors.New("token has no user id")

// Claims is the identity carried by a bearer token. The identity is trusted
// as signed; no store lookup is made.
type Claims struct {
	UserID   int64       `json:"id"`
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by Authenticator, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// Authenticator verifies HS256 bearer tokens against a shared secret.
type Authenticator struct {
	secret []byte
	log    zerolog.Logger
}

func NewAuthenticator(secret []byte, log zerolog.Logger) *Authenticator {
	return &Authenticator{secret: secret, log: log}
}

// Handler rejects requests without a valid token and attaches the decoded
// claims to the request context otherwise.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get(AuthHeader))
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "No token provided, authorization denied")
			return
		}

		claims, err := a.validateToken(token)
		if err != nil {
			a.log.Warn().Err(err).Str("path", r.URL.Path).Msg("token validation failed")
			writeMessage(w, http.StatusUnauthorized, "Invalid token, authorization denied")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (a *Authenticator) validateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims.UserID == 0 {
		return nil, errMissingUserID
	}
	return claims, nil
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// RequireRole rejects callers whose token role does not grant the required
// role. Must run after Authenticator.Handler.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "No token provided, authorization denied")
				return
			}
			if !allows(claims.Role, role) {
				writeMessage(w, http.StatusForbidden, "Access denied, insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allows(have, want domain.Role) bool {
	switch want {
	case domain.RoleAdmin:
		return have.IsAdmin()
	case domain.RoleUser:
		return have == domain.RoleUser || have.IsAdmin()
	default:
		return false
	}
}

// TokenIssuer signs bearer tokens accepted by Authenticator.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) Issue(user domain.User) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
