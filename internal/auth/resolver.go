package auth

import (
	"context"
	"net/http"
	"strings"

	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"
)

// CookieName is the session cookie carrying the access token.
const CookieName = "access_token"

// Carrier extracts a candidate token from a request. It reports false when
// the request does not use this transport at all.
type Carrier func(r *http.Request) (string, bool)

// BearerCarrier reads a token from the Authorization header.
func BearerCarrier(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// CookieCarrier reads a token from the session cookie.
func CookieCarrier(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Resolver turns request credentials into users. Each carrier is tried in
// order; a carrier that yields no token, a bad token or an unknown subject
// falls through silently to the next one. Only when every carrier is
// exhausted does resolution fail, with a single uniform error.
type Resolver struct {
	cfg   models.AuthConfig
	users store.IdentityStore
	cache *IdentityCache
}

func NewResolver(cfg models.AuthConfig, users store.IdentityStore, cache *IdentityCache) *Resolver {
	return &Resolver{cfg: cfg, users: users, cache: cache}
}

// Resolve identifies the caller from the first carrier that produces a valid
// token for a known user. The active flag is deliberately not checked here:
// an inactive user resolves successfully and is rejected by the middleware,
// rather than falling through to weaker credentials.
func (rs *Resolver) Resolve(ctx context.Context, r *http.Request, carriers ...Carrier) (*models.User, error) {
	for _, carrier := range carriers {
		token, ok := carrier(r)
		if !ok {
			continue
		}

		username, err := parseSubject(rs.cfg, token)
		if err != nil {
			continue
		}

		user, err := rs.lookupUser(ctx, username)
		if err != nil {
			continue
		}
		return user, nil
	}
	return nil, store.ErrInvalidCredentials
}

func (rs *Resolver) lookupUser(ctx context.Context, username string) (*models.User, error) {
	if user, ok := rs.cache.Get(ctx, username); ok {
		return user, nil
	}

	user, err := rs.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	rs.cache.Set(ctx, user)
	return user, nil
}
