package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"testadmin/internal/models"
	"testadmin/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	RoleAdmin     = "ADMIN"
	RoleManager   = "MANAGER"
	RoleCandidate = "CANDIDATE"
)

const principalKey contextKey = "principal"

var (
	ErrMissingAuthHeader = errors.New("missing or malformed Authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidClaims     = errors.New("invalid token claims")
)

var parseJWT = func(tokenStr string, keyFunc jwt.Keyfunc) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, keyFunc)
}

// Principal is the authenticated caller.
type Principal struct {
	ID    string
	Roles []string
	// Token is the raw bearer token, forwarded to upstream services.
	Token string
}

func (p *Principal) HasRole(roles ...string) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Authenticator verifies HMAC-signed bearer tokens.
type Authenticator struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthenticator accepts the shared secret either base64 encoded or raw.
func NewAuthenticator(secret string, logger *zap.Logger) *Authenticator {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(key) == 0 {
		key = []byte(secret)
	}
	return &Authenticator{secret: key, logger: logger}
}

// Verify parses the Authorization header and returns the caller.
func (a *Authenticator) Verify(r *http.Request) (*Principal, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return nil, ErrMissingAuthHeader
	}
	tokenStr := strings.TrimPrefix(authz, "Bearer ")

	token, err := parseJWT(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	id, err := subject(claims)
	if err != nil {
		return nil, ErrInvalidClaims
	}
	return &Principal{ID: id, Roles: roles(claims), Token: tokenStr}, nil
}

// Authenticate rejects requests without a valid token.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.Verify(r)
		if err != nil {
			a.logger.Debug("Rejected request", zap.String("path", r.URL.Path), zap.Error(err))
			utils.Error(w, http.StatusUnauthorized, models.CodeUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles lets the request through when the caller has any of roles.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFrom(r.Context())
			if principal == nil {
				utils.Error(w, http.StatusUnauthorized, models.CodeUnauthorized, ErrMissingAuthHeader.Error())
				return
			}
			if !principal.HasRole(roles...) {
				utils.Error(w, http.StatusForbidden, models.CodeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFrom returns the authenticated caller or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// WithPrincipal stores p in ctx; used by tests and internal callers.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func subject(claims jwt.MapClaims) (string, error) {
	for _, key := range []string{"sub", "userId", "id"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			// JWT numbers get decoded as float64
			return fmt.Sprintf("%d", int64(v)), nil
		}
	}
	return "", errors.New("missing subject claim")
}

// roles reads "role" or "roles", upper-cased with any ROLE_ prefix dropped.
func roles(claims jwt.MapClaims) []string {
	var raw []string
	if v, ok := claims["role"].(string); ok {
		raw = append(raw, v)
	}
	switch v := claims["roles"].(type) {
	case string:
		raw = append(raw, strings.Split(v, ",")...)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(r)), "ROLE_")
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
