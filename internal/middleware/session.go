package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/popcorn/internal/ui"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// SessionContextKey is the key for storing the session in context
const SessionContextKey ContextKey = "session"

// SessionMiddleware attaches the browser's session to every request,
// creating one when the cookie is missing or unknown.
type SessionMiddleware struct {
	manager      *ui.Manager
	cookieName   string
	maxAge       time.Duration
	isProduction bool
	logger       *log.Logger
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(manager *ui.Manager, cookieName string, maxAge time.Duration, isProduction bool, logger *log.Logger) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "session"
	}
	if maxAge == 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &SessionMiddleware{
		manager:      manager,
		cookieName:   cookieName,
		maxAge:       maxAge,
		isProduction: isProduction,
		logger:       logger,
	}
}

// RequireSession ensures the request carries a live session
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.lookup(r)
		if errors.Is(err, ui.ErrUnknownSession) {
			session, err = m.manager.Create(r.Context())
			if err == nil {
				m.SetSessionCookie(w, session.ID)
			}
		}
		if err != nil {
			m.logger.Printf("Failed to load session: %v", err)
			http.Error(w, `{"error":"Failed to load session"}`, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) lookup(r *http.Request) (*ui.Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, ui.ErrUnknownSession
	}

	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil, ui.ErrUnknownSession
	}

	return m.manager.Get(r.Context(), id)
}

// GetSessionFromContext retrieves the session from request context
func GetSessionFromContext(ctx context.Context) (*ui.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*ui.Session)
	return session, ok
}

// SetSessionCookie sets a session cookie
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, id uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
