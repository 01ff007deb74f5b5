package form

import (
	"context"

	"authportal/internal/cli/api"
	"authportal/internal/cli/nav"
	pkgerrors "authportal/pkg/errors"
	"authportal/pkg/utils/logger"

	"go.uber.org/zap"
)

// LoginAPI exchanges credentials for a token.
type LoginAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (api.Reply, error)
}

// TokenSink persists or forgets the session token.
type TokenSink interface {
	Establish(ctx context.Context, token string) error
	End(ctx context.Context) error
}

// LoginOption customizes a LoginForm.
type LoginOption func(*LoginForm)

// WithPersistBeforeStatus stores the token as soon as the body is parsed,
// before the HTTP status is checked. A reply without a token clears the slot.
func WithPersistBeforeStatus(enabled bool) LoginOption {
	return func(f *LoginForm) {
		f.persistBeforeStatus = enabled
	}
}

// LoginForm is the login screen controller.
type LoginForm struct {
	*controller
	api                 LoginAPI
	tokens              TokenSink
	persistBeforeStatus bool
	creds               LoginCredentials
}

func NewLoginForm(client LoginAPI, tokens TokenSink, navigator nav.Navigator, opts ...LoginOption) *LoginForm {
	f := &LoginForm{
		controller: newController("login", navigator),
		api:        client,
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetEmail sets the email field.
func (f *LoginForm) SetEmail(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds.Email = value
}

// SetPassword sets the password field.
func (f *LoginForm) SetPassword(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds.Password = value
}

// UpdateField sets one field. The login form has no username.
func (f *LoginForm) UpdateField(field Field, value string) error {
	switch field {
	case FieldEmail:
		f.SetEmail(value)
	case FieldPassword:
		f.SetPassword(value)
	default:
		return pkgerrors.Newf(pkgerrors.UnknownField, "login form has no %s field", field)
	}
	return nil
}

// Credentials returns a copy of the current input.
func (f *LoginForm) Credentials() LoginCredentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds
}

// Dispose tears the screen down; a late response is discarded.
func (f *LoginForm) Dispose() {
	f.dispose(func() { f.creds = LoginCredentials{} })
}

// Submit validates the input, posts it, and on success stores the token,
// clears the form and navigates to the user screen.
func (f *LoginForm) Submit(ctx context.Context) error {
	ctx = logger.WithFlow(ctx, "login")
	var req api.LoginRequest
	ctx, gen, err := f.begin(ctx, func() *pkgerrors.Error {
		if missing := missingFields(f.creds); len(missing) > 0 {
			return pkgerrors.ValidationError(pkgerrors.RequiredFieldEmpty, MsgMissingFields).
				WithDetail("fields", missing)
		}
		req = api.LoginRequest{Email: f.creds.Email, Password: f.creds.Password}
		return nil
	})
	if err != nil {
		return err
	}

	reply, err := f.api.Login(ctx, req)
	out := outcome{route: nav.RouteUser, success: MsgLoginOK}
	if err != nil {
		out.err = err
	} else if f.current(gen) {
		out.err = f.persist(ctx, reply)
	}
	return f.finish(ctx, gen, out, func() { f.creds = LoginCredentials{} })
}

func (f *LoginForm) persist(ctx context.Context, reply api.Reply) error {
	ctx = logger.WithRequestID(ctx, reply.RequestID)
	if f.persistBeforeStatus {
		var storeErr error
		if reply.HasToken && reply.Token != "" {
			storeErr = f.tokens.Establish(ctx, reply.Token)
		} else {
			storeErr = f.tokens.End(ctx)
		}
		if failure := reply.Failure(MsgLoginFailed); failure != nil {
			return failure
		}
		return storeErr
	}

	if failure := reply.Failure(MsgLoginFailed); failure != nil {
		return failure
	}
	if reply.Token == "" {
		logger.Warn(ctx, "login succeeded without a token", zap.Int("status", reply.StatusCode))
		return pkgerrors.New(pkgerrors.MalformedResponse).WithMessage(MsgLoginFailed)
	}
	return f.tokens.Establish(ctx, reply.Token)
}
