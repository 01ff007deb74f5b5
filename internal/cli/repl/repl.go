package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"authportal/internal/cli/api"
	"authportal/internal/cli/command"
	"authportal/internal/cli/config"
	"authportal/internal/cli/form"
	httpclient "authportal/internal/cli/http"
	"authportal/internal/cli/loader"
	"authportal/internal/cli/nav"
	"authportal/internal/cli/session"
	"authportal/internal/cli/state"
	"authportal/internal/cli/viewer"
	pkgerrors "authportal/pkg/errors"
	"authportal/pkg/utils/logger"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

// Session holds REPL state: the mounted screen and the collaborators every
// screen is built from. It is driven from a single goroutine.
type Session struct {
	http     *httpclient.Client
	api      *api.Client
	session  *session.Context
	cfg      config.Config
	commands map[string]command.Command
	prompter Prompter
	out      io.Writer
	spinner  *loader.Spinner

	route    nav.Route
	pending  nav.Route
	login    *form.LoginForm
	register *form.RegisterForm
	viewer   *viewer.Viewer
}

// New builds a session writing to out. spinnerOpts tune the loading
// indicator; out is rarely a file, so callers pass loader.WithAnimation
// when the real terminal supports it.
func New(client *httpclient.Client, sess *session.Context, cfg config.Config, prompter Prompter, out io.Writer, spinnerOpts ...loader.Option) *Session {
	return &Session{
		http:     client,
		api:      api.New(client),
		session:  sess,
		cfg:      cfg,
		commands: command.Registry(),
		prompter: prompter,
		out:      out,
		spinner:  loader.New(out, spinnerOpts...),
	}
}

// Route is the mounted screen.
func (s *Session) Route() nav.Route {
	return s.route
}

// Navigate queues a screen transition. It is applied once the running
// command returns, so a flow never tears itself down mid-call.
func (s *Session) Navigate(route nav.Route) {
	s.pending = route
}

// Start mounts the first screen: the user screen when a token is stored,
// the login screen otherwise.
func (s *Session) Start(ctx context.Context) {
	start := nav.RouteLogin
	if token, err := s.session.Token(ctx); err == nil && token != "" {
		start = nav.RouteUser
	}
	s.goTo(ctx, start)
}

// Run reads commands until exit or end of input.
func (s *Session) Run(ctx context.Context) error {
	if s.route == "" {
		s.Start(ctx)
	}
	for {
		line, err := s.prompter.Readline(fmt.Sprintf("authportal[%s]> ", s.route))
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			s.shutdown()
			return nil
		}
		if err != nil {
			s.shutdown()
			return fmt.Errorf("read input failed: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		exit, err := s.Execute(ctx, line)
		if err != nil {
			s.printLine("error: %v", err)
		}
		if exit {
			s.printLine("bye")
			s.shutdown()
			return nil
		}
	}
}

// Execute runs one command line and applies the navigation it caused.
func (s *Session) Execute(ctx context.Context, line string) (exit bool, err error) {
	inv, err := command.Parse(s.commands, line)
	if err != nil {
		return false, err
	}
	defer s.applyNavigation(ctx)
	ctx = logger.WithRoute(ctx, string(s.route))

	switch inv.Command.Name {
	case command.Exit:
		return true, nil
	case command.Help:
		s.printHelp()
	case command.Login:
		return false, s.handleLogin(ctx, inv)
	case command.Register:
		return false, s.handleRegister(ctx, inv)
	case command.SetField:
		return false, s.handleField(inv)
	case command.Submit:
		return false, s.handleSubmit(ctx)
	case command.Toggle:
		return false, s.handleToggle(inv)
	case command.User:
		s.Navigate(nav.RouteUser)
	case command.Logout:
		s.Navigate(nav.RouteLogout)
	case command.Goto:
		route, ok := nav.Parse(inv.Arg(0))
		if !ok {
			return false, pkgerrors.Newf(pkgerrors.InvalidParams, "unknown route: %s", inv.Arg(0))
		}
		s.Navigate(route)
	case command.Show:
		return false, s.handleShow(ctx, inv.Arg(0))
	case command.Set:
		return false, s.handleSet(inv.Arg(0), inv.Arg(1))
	}
	return false, nil
}

func (s *Session) handleLogin(ctx context.Context, inv command.Invocation) error {
	if s.route != nav.RouteLogin {
		s.goTo(ctx, nav.RouteLogin)
	}
	if err := s.fill(s.login, inv); err != nil {
		return err
	}
	return s.submit(ctx, s.login)
}

func (s *Session) handleRegister(ctx context.Context, inv command.Invocation) error {
	if s.route != nav.RouteRegister {
		s.goTo(ctx, nav.RouteRegister)
	}
	if err := s.fill(s.register, inv); err != nil {
		return err
	}
	return s.submit(ctx, s.register)
}

func (s *Session) handleField(inv command.Invocation) error {
	f, ok := s.currentForm()
	if !ok {
		return pkgerrors.Newf(pkgerrors.InvalidParams, "no form on %s", s.route)
	}
	field, err := form.ParseField(inv.Arg(0))
	if err != nil {
		return err
	}
	return f.UpdateField(field, inv.Arg(1))
}

func (s *Session) handleSubmit(ctx context.Context) error {
	f, ok := s.currentForm()
	if !ok {
		return pkgerrors.Newf(pkgerrors.InvalidParams, "no form on %s", s.route)
	}
	return s.submit(ctx, f)
}

func (s *Session) handleToggle(inv command.Invocation) error {
	if inv.Arg(0) != "secret" {
		return pkgerrors.Newf(pkgerrors.InvalidParams, "usage: %s", inv.Command.Usage)
	}
	f, ok := s.currentForm()
	if !ok {
		return pkgerrors.Newf(pkgerrors.InvalidParams, "no form on %s", s.route)
	}
	if f.ToggleSecretVisibility() {
		s.printLine("password visible")
	} else {
		s.printLine("password masked")
	}
	return nil
}

// fill copies the command's params into the form and prompts for required
// fields that are still empty.
func (s *Session) fill(f credentialForm, inv command.Invocation) error {
	for key, value := range inv.Params {
		field, err := form.ParseField(key)
		if err != nil {
			return err
		}
		if err := f.UpdateField(field, value); err != nil {
			return err
		}
	}

	current := formValues(f)
	for _, field := range current.Missing(inv.Command.Fields) {
		value, err := s.promptValue(field, f.SecretVisible())
		if err != nil {
			return err
		}
		parsed, err := form.ParseField(field.Name)
		if err != nil {
			return err
		}
		if err := f.UpdateField(parsed, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptValue(field command.Field, secretVisible bool) (string, error) {
	prompt := field.Prompt + ": "
	var (
		value string
		err   error
	)
	if field.Secret && !secretVisible {
		value, err = s.prompter.ReadPassword(prompt)
	} else {
		value, err = s.prompter.Readline(prompt)
	}
	if err != nil {
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// submit runs the form and renders its status. Failures already shown on
// the form are not reported again.
func (s *Session) submit(ctx context.Context, f credentialForm) error {
	err := f.Submit(ctx)
	status := f.Status()
	switch {
	case status.Error != "":
		s.printLine("✗ %s", status.Error)
	case status.Success != "":
		s.printLine("✓ %s", status.Success)
	}
	switch pkgerrors.GetKind(err) {
	case pkgerrors.KindNone, pkgerrors.KindValidation, pkgerrors.KindRemote, pkgerrors.KindNetwork:
		return nil
	default:
		return err
	}
}

func (s *Session) handleShow(ctx context.Context, what string) error {
	switch what {
	case "token":
		return s.showToken(ctx)
	case "config":
		s.showConfig()
	case "status":
		s.showStatus()
	case "profile":
		return s.showProfile()
	default:
		return pkgerrors.Newf(pkgerrors.InvalidParams, "usage: show token|config|status|profile")
	}
	return nil
}

func (s *Session) showToken(ctx context.Context) error {
	token, err := s.session.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		s.printLine("token: <empty>")
		return nil
	}
	s.printLine("token: %s", logger.MaskToken(token))
	if expiresAt, ok, err := s.session.ExpiresAt(ctx); err == nil && ok {
		s.printLine("stored until: %s", expiresAt.Format(time.RFC3339))
	}
	info := state.Inspect(token)
	if info.Opaque {
		s.printLine("claims: <opaque>")
		return nil
	}
	if info.Subject != "" {
		s.printLine("subject: %s", info.Subject)
	}
	if info.Issuer != "" {
		s.printLine("issuer: %s", info.Issuer)
	}
	if !info.ExpiresAt.IsZero() {
		s.printLine("claims expire: %s (unverified)", info.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (s *Session) showConfig() {
	s.printLine("base: %s", s.http.BaseURL())
	s.printLine("timeout: %s", s.http.Timeout())
	s.printLine("tokenStore: %s (key %s, ttl %s)", s.cfg.TokenStore.Driver, s.cfg.TokenStore.Key, s.cfg.TokenStore.TTL)
	switch s.cfg.TokenStore.Driver {
	case config.DriverFile:
		s.printLine("tokenStatePath: %s", s.cfg.TokenStore.Path)
	case config.DriverRedis:
		s.printLine("redis: %s db=%d prefix=%s", s.cfg.Redis.Addr, s.cfg.Redis.DB, s.cfg.Redis.KeyPrefix)
	}
	s.printLine("persistBeforeStatus: %t", s.cfg.TokenStore.PersistBeforeStatus)
	s.printLine("log: %s (%s)", s.cfg.Log.OutputPath, s.cfg.Log.Level)
}

func (s *Session) showStatus() {
	s.printLine("route: %s", s.route)
	if f, ok := s.currentForm(); ok {
		status := f.Status()
		s.printLine("phase: %s", f.Phase())
		s.printLine("loading: %t", status.Loading)
		s.printLine("secret visible: %t", f.SecretVisible())
		if status.Error != "" {
			s.printLine("error: %s", status.Error)
		}
		if status.Success != "" {
			s.printLine("success: %s", status.Success)
		}
		return
	}
	if s.viewer != nil {
		s.printLine("loading: %t", s.viewer.Loading())
		s.printLine("session: %s", s.viewer.Display())
	}
}

func (s *Session) showProfile() error {
	if s.viewer == nil {
		return pkgerrors.Newf(pkgerrors.InvalidParams, "open the user screen first")
	}
	profile, ok := s.viewer.Profile()
	if !ok {
		s.printLine("profile: <none>")
		return nil
	}
	var (
		data []byte
		err  error
	)
	if s.cfg.PrettyJSON != nil && *s.cfg.PrettyJSON {
		data, err = json.MarshalIndent(profile.Fields, "", "  ")
	} else {
		data, err = json.Marshal(profile.Fields)
	}
	if err != nil {
		return err
	}
	s.printLine("%s", string(data))
	return nil
}

func (s *Session) handleSet(what, value string) error {
	switch what {
	case "base":
		s.http.SetBaseURL(value)
		s.printLine("base set to %s", s.http.BaseURL())
	case "timeout":
		dur, err := time.ParseDuration(value)
		if err != nil {
			return pkgerrors.Newf(pkgerrors.InvalidParams, "invalid duration: %v", err)
		}
		s.http.SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	default:
		return pkgerrors.Newf(pkgerrors.InvalidParams, "usage: set base|timeout")
	}
	return nil
}

func (s *Session) printHelp() {
	s.printLine("commands:")
	for _, cmd := range command.Ordered() {
		s.printLine("  %-68s %s", cmd.Usage, cmd.Summary)
	}
}

func (s *Session) shutdown() {
	s.unmount()
	if err := logger.Sync(); err != nil {
		logger.Debug(context.Background(), "logger sync failed", zap.Error(err))
	}
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format+"\n", args...)
}
