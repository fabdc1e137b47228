package remote

import (
	"context"
	"errors"
)

type credentialKey struct{}

var ErrUnauthorized = errors.New("session credential missing or expired")

// WithCredential attaches the caller's bearer token to the context. Every
// remote cart call requires it; its absence surfaces as ErrUnauthorized
// before a request is made.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

func credentialFrom(ctx context.Context) (string, error) {
	token, ok := ctx.Value(credentialKey{}).(string)
	if !ok || token == "" {
		return "", ErrUnauthorized
	}
	return token, nil
}
