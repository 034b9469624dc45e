// Package session carries the authenticated identity through request contexts.
package session

import "context"

// Session is the authenticated principal of a request.
type Session struct {
	UserID uint
	Role   string
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// Resolver resolves the current session. A nil session with a nil error means
// the caller is not authenticated.
type Resolver interface {
	Current(ctx context.Context) (*Session, error)
}

// ContextResolver reads the session placed in the context by the auth middleware.
type ContextResolver struct{}

func (ContextResolver) Current(ctx context.Context) (*Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, nil
	}
	return s, nil
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (*Session, error)

func (f ResolverFunc) Current(ctx context.Context) (*Session, error) {
	return f(ctx)
}
