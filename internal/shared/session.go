package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionInvalid is returned when a session cookie fails verification.
var ErrSessionInvalid = errors.New("session token invalid")

// SessionManager issues and verifies signed session tokens carried in an
// HTTP-only cookie. Revoked token IDs live in Redis until their expiry.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
	now        func() time.Time
}

type sessionClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
		now:        time.Now,
	}
}

// Issue signs a new token for userID and writes it as the session cookie.
func (sm *SessionManager) Issue(w http.ResponseWriter, userID int64) (*Principal, error) {
	now := sm.now()
	expires := now.Add(sm.ttl)
	id := uuid.NewString()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.secret)
	if err != nil {
		return nil, fmt.Errorf("shared: sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  expires,
	})
	return &Principal{UserID: userID, SessionID: id, ExpiresAt: expires}, nil
}

// Load verifies the session cookie. A request without a cookie yields a nil
// principal and nil error; a bad or revoked token yields ErrSessionInvalid.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Principal, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	if strings.TrimSpace(cookie.Value) == "" {
		return nil, nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return sm.secret, nil
	}, jwt.WithTimeFunc(sm.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrSessionInvalid
	}
	if claims.ID == "" || claims.UserID == 0 {
		return nil, ErrSessionInvalid
	}

	revoked, err := sm.client.Exists(ctx, sm.revokedKey(claims.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("shared: check revocation: %w", err)
	}
	if revoked > 0 {
		return nil, ErrSessionInvalid
	}

	return &Principal{
		UserID:    claims.UserID,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blacklists the principal's token until it would have expired and
// expires the cookie on the client.
func (sm *SessionManager) Revoke(ctx context.Context, w http.ResponseWriter, p *Principal) error {
	sm.clearCookie(w)
	if p == nil || p.SessionID == "" {
		return nil
	}
	remaining := p.ExpiresAt.Sub(sm.now())
	if remaining <= 0 {
		return nil
	}
	if err := sm.client.Set(ctx, sm.revokedKey(p.SessionID), "1", remaining).Err(); err != nil {
		return fmt.Errorf("shared: revoke session: %w", err)
	}
	return nil
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (sm *SessionManager) revokedKey(id string) string {
	return "session:revoked:" + id
}
