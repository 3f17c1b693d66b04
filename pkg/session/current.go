package session

import (
	"context"

	"campsite/pkg/model"
)

type contextKey string

const currentKey contextKey = "session_current"

// Current is the per-request view of the caller's session. It is an
// explicit value threaded through the request context; nothing request
// scoped lives on shared state.
type Current struct {
	Session *model.Session
	User    *model.User
}

func (c *Current) SignedIn() bool {
	return c != nil && c.User != nil
}

func (c *Current) UserID() string {
	if c == nil || c.Session == nil {
		return ""
	}
	return c.Session.UserID
}

func (c *Current) Token() string {
	if c == nil || c.Session == nil {
		return ""
	}
	return c.Session.Token
}

func WithCurrent(ctx context.Context, cur *Current) context.Context {
	return context.WithValue(ctx, currentKey, cur)
}

func FromContext(ctx context.Context) *Current {
	if cur, ok := ctx.Value(currentKey).(*Current); ok {
		return cur
	}
	return &Current{}
}
