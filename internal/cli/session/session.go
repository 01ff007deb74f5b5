// Package session holds the credential context shared by the portal screens.
// It is built once at startup and injected into each flow, so no screen reads
// a global token.
package session

import (
	"context"
	"time"

	"authportal/internal/cli/state"
	"authportal/pkg/utils/logger"

	"go.uber.org/zap"
)

// TokenSlot is the subset of the token store a session needs.
type TokenSlot interface {
	Set(ctx context.Context, token string) error
	Get(ctx context.Context) (string, error)
	ExpiresAt(ctx context.Context) (time.Time, bool, error)
	Clear(ctx context.Context) error
}

var _ TokenSlot = (*state.TokenStore)(nil)

// Context is the session-context object passed to every flow.
type Context struct {
	tokens TokenSlot
}

func New(tokens TokenSlot) *Context {
	return &Context{tokens: tokens}
}

// Token returns the stored bearer token; "" when none is live.
func (c *Context) Token(ctx context.Context) (string, error) {
	return c.tokens.Get(ctx)
}

// Establish persists a freshly issued token, replacing any prior one.
func (c *Context) Establish(ctx context.Context, token string) error {
	if err := c.tokens.Set(ctx, token); err != nil {
		logger.Error(ctx, "persist token failed", zap.Error(err))
		return err
	}
	logger.Info(ctx, "token persisted", zap.String("token", logger.MaskToken(token)))
	return nil
}

// End forgets the stored token.
func (c *Context) End(ctx context.Context) error {
	if err := c.tokens.Clear(ctx); err != nil {
		logger.Error(ctx, "clear token failed", zap.Error(err))
		return err
	}
	logger.Info(ctx, "token cleared")
	return nil
}

// ExpiresAt reports when the stored token stops being sent.
func (c *Context) ExpiresAt(ctx context.Context) (time.Time, bool, error) {
	return c.tokens.ExpiresAt(ctx)
}
