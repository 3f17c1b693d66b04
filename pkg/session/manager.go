package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"campsite/pkg/logger"
	"campsite/pkg/model"
)

// UserResolver turns a session's user id into the full user record for
// rendering. Wired to the users service at startup.
type UserResolver func(ctx context.Context, id string) (*model.User, error)

type Manager struct {
	store       Store
	cookieName  string
	ttl         time.Duration
	secure      bool
	resolveUser UserResolver
	log         *logger.Logger
}

func NewManager(store Store, cookieName string, ttl time.Duration, secure bool, resolveUser UserResolver, log *logger.Logger) *Manager {
	return &Manager{
		store:       store,
		cookieName:  cookieName,
		ttl:         ttl,
		secure:      secure,
		resolveUser: resolveUser,
		log:         log,
	}
}

// Middleware resolves the session cookie into a Current on the request
// context. A missing or expired session just means an anonymous caller.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cur := &Current{}

			if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
				sess, err := m.store.Find(r.Context(), cookie.Value)
				switch {
				case err == nil:
					cur.Session = sess
					if sess.UserID != "" && m.resolveUser != nil {
						if user, err := m.resolveUser(r.Context(), sess.UserID); err == nil {
							cur.User = user
						}
					}
				case !errors.Is(err, ErrSessionNotFound):
					m.log.Error("Failed to load session", "error", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(WithCurrent(r.Context(), cur)))
		})
	}
}

// Flash appends a one-time notice to the caller's session, creating the
// session on first write.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, kind, text string) {
	cur := FromContext(r.Context())
	sess := m.ensureSession(w, r, cur)

	sess.Flashes = append(sess.Flashes, model.Flash{Kind: kind, Text: text})
	if err := m.store.Save(r.Context(), sess); err != nil {
		m.log.Error("Failed to persist flash", "error", err)
	}
}

// PopFlashes returns the pending notices and clears them, so each is shown
// exactly once.
func (m *Manager) PopFlashes(r *http.Request) []model.Flash {
	cur := FromContext(r.Context())
	if cur.Session == nil || len(cur.Session.Flashes) == 0 {
		return nil
	}

	flashes := cur.Session.Flashes
	cur.Session.Flashes = nil
	if err := m.store.Save(r.Context(), cur.Session); err != nil {
		m.log.Error("Failed to clear flashes", "error", err)
	}
	return flashes
}

// SetReturnTo records the originally requested path for post-login redirect.
func (m *Manager) SetReturnTo(w http.ResponseWriter, r *http.Request, path string) {
	cur := FromContext(r.Context())
	sess := m.ensureSession(w, r, cur)

	sess.ReturnTo = path
	if err := m.store.Save(r.Context(), sess); err != nil {
		m.log.Error("Failed to persist return path", "error", err)
	}
}

// SignIn binds the user to a fresh session token. The old token, if any, is
// discarded so authentication always rotates the session id. Returns the
// recorded return path.
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, userID string) string {
	cur := FromContext(r.Context())

	returnTo := ""
	if cur.Session != nil {
		returnTo = cur.Session.ReturnTo
		if err := m.store.Delete(r.Context(), cur.Session.Token); err != nil {
			m.log.Error("Failed to discard pre-login session", "error", err)
		}
	}

	now := time.Now().UTC()
	sess := &model.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Flashes:   flashesOf(cur.Session),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(r.Context(), sess); err != nil {
		m.log.Error("Failed to persist session", "error", err)
	}

	cur.Session = sess
	m.setCookie(w, sess.Token, int(m.ttl.Seconds()))
	return returnTo
}

func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) {
	cur := FromContext(r.Context())
	if cur.Session != nil {
		if err := m.store.Delete(r.Context(), cur.Session.Token); err != nil {
			m.log.Error("Failed to delete session", "error", err)
		}
		cur.Session = nil
		cur.User = nil
	}
	m.setCookie(w, "", -1)
}

func (m *Manager) ensureSession(w http.ResponseWriter, r *http.Request, cur *Current) *model.Session {
	if cur.Session != nil {
		return cur.Session
	}

	now := time.Now().UTC()
	sess := &model.Session{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	cur.Session = sess
	m.setCookie(w, sess.Token, int(m.ttl.Seconds()))
	return sess
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func flashesOf(sess *model.Session) []model.Flash {
	if sess == nil {
		return nil
	}
	return sess.Flashes
}
