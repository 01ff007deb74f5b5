package repl

import (
	"context"

	"authportal/internal/cli/command"
	"authportal/internal/cli/form"
	"authportal/internal/cli/nav"
	"authportal/internal/cli/viewer"
	"authportal/pkg/utils/logger"

	"go.uber.org/zap"
)

// credentialForm is what the REPL needs from the login and register screens.
type credentialForm interface {
	UpdateField(field form.Field, value string) error
	Submit(ctx context.Context) error
	Status() form.Status
	Phase() form.Phase
	ToggleSecretVisibility() bool
	SecretVisible() bool
}

func (s *Session) currentForm() (credentialForm, bool) {
	switch {
	case s.route == nav.RouteLogin && s.login != nil:
		return s.login, true
	case s.route == nav.RouteRegister && s.register != nil:
		return s.register, true
	}
	return nil, false
}

func formValues(f credentialForm) command.Params {
	params := command.Params{}
	switch v := f.(type) {
	case *form.LoginForm:
		creds := v.Credentials()
		params.Set("email", creds.Email)
		params.Set("password", creds.Password)
	case *form.RegisterForm:
		creds := v.Credentials()
		params.Set("Username", creds.Username)
		params.Set("email", creds.Email)
		params.Set("password", creds.Password)
	}
	return params
}

func (s *Session) goTo(ctx context.Context, route nav.Route) {
	s.Navigate(route)
	s.applyNavigation(ctx)
}

// applyNavigation mounts queued routes until the screen settles. Mounting
// the user screen may itself queue a redirect to the login screen.
func (s *Session) applyNavigation(ctx context.Context) {
	for s.pending != "" {
		route := s.pending
		s.pending = ""
		s.mount(ctx, route)
	}
}

func (s *Session) mount(ctx context.Context, route nav.Route) {
	ctx = logger.WithRoute(logger.WithFlow(ctx, "router"), string(route))
	logger.Debug(ctx, "navigate", zap.String("from", string(s.route)), zap.String("to", string(route)))
	s.unmount()
	s.route = route

	switch route {
	case nav.RouteLogin:
		s.login = form.NewLoginForm(s.api, s.session, s,
			form.WithPersistBeforeStatus(s.cfg.TokenStore.PersistBeforeStatus))
		s.login.OnStatusChange(s.onStatus)
		s.printLine("== Login ==")
		s.printLine("login email=<email> password=<password>, or \"register\" to create an account")
	case nav.RouteRegister:
		s.register = form.NewRegisterForm(s.api, s)
		s.register.OnStatusChange(s.onStatus)
		s.printLine("== Register ==")
		s.printLine("register username=<name> email=<email> password=<password>")
	case nav.RouteUser:
		s.viewer = viewer.New(s.api, s.session, s)
		s.viewer.OnLoadingChange(s.spinner.Set)
		if err := s.viewer.Activate(ctx); err != nil {
			return
		}
		_ = s.viewer.Render(s.out)
	case nav.RouteLogout:
		if err := s.session.End(ctx); err != nil {
			s.printLine("error: %v", err)
		} else {
			s.printLine("Logged out.")
		}
		s.Navigate(nav.RouteLogin)
	}
}

func (s *Session) unmount() {
	if s.login != nil {
		s.login.Dispose()
		s.login = nil
	}
	if s.register != nil {
		s.register.Dispose()
		s.register = nil
	}
	if s.viewer != nil {
		s.viewer.Dispose()
		s.viewer = nil
	}
	s.spinner.Hide()
}

func (s *Session) onStatus(status form.Status) {
	s.spinner.Set(status.Loading)
}
