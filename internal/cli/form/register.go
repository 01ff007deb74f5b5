package form

import (
	"context"

	"authportal/internal/cli/api"
	"authportal/internal/cli/nav"
	pkgerrors "authportal/pkg/errors"
	"authportal/pkg/utils/logger"
)

// RegisterAPI creates an account.
type RegisterAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (api.Reply, error)
}

// RegisterForm is the registration screen controller.
type RegisterForm struct {
	*controller
	api    RegisterAPI
	policy PasswordPolicy
	creds  RegisterCredentials
}

func NewRegisterForm(client RegisterAPI, navigator nav.Navigator) *RegisterForm {
	return &RegisterForm{
		controller: newController("register", navigator),
		api:        client,
		policy:     DefaultPasswordPolicy(),
	}
}

// SetUsername sets the username field.
func (f *RegisterForm) SetUsername(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds.Username = value
}

// SetEmail sets the email field.
func (f *RegisterForm) SetEmail(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds.Email = value
}

// SetPassword sets the password field.
func (f *RegisterForm) SetPassword(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds.Password = value
}

// UpdateField sets one field.
func (f *RegisterForm) UpdateField(field Field, value string) error {
	switch field {
	case FieldUsername:
		f.SetUsername(value)
	case FieldEmail:
		f.SetEmail(value)
	case FieldPassword:
		f.SetPassword(value)
	default:
		return pkgerrors.Newf(pkgerrors.UnknownField, "register form has no %s field", field)
	}
	return nil
}

// Credentials returns a copy of the current input.
func (f *RegisterForm) Credentials() RegisterCredentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds
}

// Policy returns the password strength policy in force.
func (f *RegisterForm) Policy() PasswordPolicy {
	return f.policy
}

// Dispose tears the screen down; a late response is discarded.
func (f *RegisterForm) Dispose() {
	f.dispose(func() { f.creds = RegisterCredentials{} })
}

// Submit validates the input and the password strength, posts the account,
// and on success clears the form and navigates to the login screen.
func (f *RegisterForm) Submit(ctx context.Context) error {
	ctx = logger.WithFlow(ctx, "register")
	var req api.RegisterRequest
	ctx, gen, err := f.begin(ctx, func() *pkgerrors.Error {
		if missing := missingFields(f.creds); len(missing) > 0 {
			return pkgerrors.ValidationError(pkgerrors.RequiredFieldEmpty, MsgMissingFields).
				WithDetail("fields", missing)
		}
		if violations := f.policy.Violations(f.creds.Password); len(violations) > 0 {
			return pkgerrors.ValidationError(pkgerrors.PasswordTooWeak, MsgWeakPassword).
				WithDetail("violations", violations)
		}
		req = api.RegisterRequest{Username: f.creds.Username, Email: f.creds.Email, Password: f.creds.Password}
		return nil
	})
	if err != nil {
		return err
	}

	reply, err := f.api.Register(ctx, req)
	out := outcome{route: nav.RouteLogin, success: MsgRegisterOK}
	if err != nil {
		out.err = err
	} else if failure := reply.Failure(MsgRegisterFailed); failure != nil {
		out.err = failure
	}
	return f.finish(ctx, gen, out, func() { f.creds = RegisterCredentials{} })
}
