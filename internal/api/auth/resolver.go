// Package auth reconciles the two session sources into one logical session:
// the cookie-store session written at credentials sign-in, and the self-issued
// signed token written at OTP verification.
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/whispr/internal/session"
)

// Session keys for the library-managed cookie store.
const (
	sessionKeyUserID      = "user_id"
	sessionKeyUsername    = "user_username"
	sessionKeyIsVerified  = "user_is_verified"
	sessionKeyIsAccepting = "user_is_accepting"
)

// contextKeySession is where the resolved session is stored on the gin context.
const contextKeySession = "session"

// Source identifies which mechanism produced a session.
type Source string

const (
	// SourceCredentials means the library-managed session from a password login.
	SourceCredentials Source = "credentials"
	// SourceToken means the self-issued token cookie from OTP verification.
	SourceToken Source = "token"
)

// Session is the logical session seen by handlers, whichever source it came from.
type Session struct {
	UserID             string    `json:"id"`
	Username           string    `json:"userName"`
	IsVerified         bool      `json:"isVerified"`
	IsAcceptingMessage bool      `json:"isAcceptingMessage"`
	ExpiresAt          time.Time `json:"expires,omitzero"`
	Source             Source    `json:"-"`
}

// Resolver produces one logical session per request.
type Resolver struct {
	tokens     *session.TokenManager
	cookieName string
}

// NewResolver creates a session resolver.
func NewResolver(tokens *session.TokenManager, cookieName string) *Resolver {
	return &Resolver{
		tokens:     tokens,
		cookieName: cookieName,
	}
}

// Resolve returns the request's session, or (nil, nil) for an anonymous
// request. The library-managed session is authoritative when present; only in
// its absence is the token cookie consulted. A corrupt token yields
// session.ErrTokenInvalid instead of an anonymous result.
func (r *Resolver) Resolve(c *gin.Context) (*Session, error) {
	libSession := sessions.Default(c)
	if userID := getSessionString(libSession, sessionKeyUserID); userID != "" {
		return &Session{
			UserID:             userID,
			Username:           getSessionString(libSession, sessionKeyUsername),
			IsVerified:         getSessionBool(libSession, sessionKeyIsVerified),
			IsAcceptingMessage: getSessionBool(libSession, sessionKeyIsAccepting),
			Source:             SourceCredentials,
		}, nil
	}

	token, err := c.Cookie(r.cookieName)
	if err != nil {
		// no cookie, anonymous request
		return nil, nil
	}
	payload, err := r.tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	return &Session{
		UserID:             payload.UserID,
		Username:           payload.Username,
		IsVerified:         payload.IsVerified,
		IsAcceptingMessage: payload.IsAcceptingMessage,
		ExpiresAt:          payload.ExpiresAt,
		Source:             SourceToken,
	}, nil
}

// RequireAuth returns middleware that rejects anonymous requests and stores
// the resolved session on the context.
func (r *Resolver) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := r.Resolve(c)
		if err != nil {
			if errors.Is(err, session.ErrTokenInvalid) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid session"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to resolve session"})
			return
		}
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "You are not logged in"})
			return
		}
		c.Set(contextKeySession, sess)
		c.Next()
	}
}

// CurrentSession returns the session stored by RequireAuth.
func CurrentSession(c *gin.Context) *Session {
	return c.MustGet(contextKeySession).(*Session)
}

// Helper functions to safely get session values.
func getSessionString(s sessions.Session, key string) string {
	if val := s.Get(key); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getSessionBool(s sessions.Session, key string) bool {
	if val := s.Get(key); val != nil {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
