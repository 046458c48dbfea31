package identity

import "context"

// Storage persists a session's identity across process restarts. Load returns
// (nil, nil) when nothing is stored and ErrMalformedIdentity when the stored
// value cannot be decoded.
type Storage interface {
	Load(ctx context.Context) (*Identity, error)
	Save(ctx context.Context, id Identity) error
	Clear(ctx context.Context) error
}

// Navigator moves a session to another location
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

// Navigate calls f(path)
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

// Session is the browser session an auth or checkout operation runs in.
//
// Begin derives an operation context from ctx that is cancelled as soon as
// the session navigates to another location. Commit runs fn only while that
// context is live and no navigation happened since Begin; navigation is
// blocked while fn runs and fn must navigate through nav, not the session.
// The route guard is re-evaluated after fn returns.
type Session interface {
	ID() string
	Navigator
	Begin(ctx context.Context) (context.Context, context.CancelFunc)
	Commit(ctx context.Context, fn func(nav Navigator) error) error
}
