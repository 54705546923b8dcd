package authshield

import "context"

type clientIPContextKey struct{}
type clientKeyContextKey struct{}

// DefaultClientKey names the token slot used when ctx carries no client key.
const DefaultClientKey = "default"

// WithClientIP attaches the caller's IP address to ctx for audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithClientKey selects which client's token slot Login, Logout,
// RefreshToken and CurrentUser operate on. A browser has exactly one slot;
// a server hosting many clients keys them by e.g. a cookie value.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKeyContextKey{}, key)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func clientKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return DefaultClientKey
	}

	key, _ := ctx.Value(clientKeyContextKey{}).(string)
	if key == "" {
		return DefaultClientKey
	}
	return key
}
