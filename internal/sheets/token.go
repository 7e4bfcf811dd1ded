package sheets

import "context"

// TokenSource supplies a bearer token for the remote API. The token is
// requested once per HTTP attempt so a refreshing source can rotate
// tokens mid-retry-loop. An empty token means "not authenticated".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticTokenSource returns the same token on every call. Used by the
// CLI, where the token is obtained out of band and passed in config.
func StaticTokenSource(token string) TokenSource {
	return TokenSourceFunc(func(ctx context.Context) (string, error) {
		return token, nil
	})
}
