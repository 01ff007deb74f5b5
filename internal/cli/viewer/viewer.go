// Package viewer implements the authenticated user screen. Each Viewer is one
// activation of the screen: it fetches the profile once with the stored token
// and either renders the greeting or sends the user back to the login screen.
package viewer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"authportal/internal/cli/api"
	"authportal/internal/cli/loader"
	"authportal/internal/cli/nav"
	pkgerrors "authportal/pkg/errors"
	"authportal/pkg/utils/logger"

	"go.uber.org/zap"
)

// Display is the label of the session link.
type Display string

const (
	DisplayLogin  Display = "Login"
	DisplayLogout Display = "Logout"
)

// ProfileAPI fetches the current user.
type ProfileAPI interface {
	Profile(ctx context.Context, token string) (api.UserProfile, error)
}

// TokenSource yields the stored bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Viewer struct {
	api       ProfileAPI
	tokens    TokenSource
	navigator nav.Navigator

	mu        sync.Mutex
	activated bool
	loading   bool
	disposed  bool
	display   Display
	profile   *api.UserProfile
	err       error
	cancel    context.CancelFunc
	observers []func(bool)
}

func New(client ProfileAPI, tokens TokenSource, navigator nav.Navigator) *Viewer {
	if navigator == nil {
		navigator = nav.NavigatorFunc(func(nav.Route) {})
	}
	return &Viewer{
		api:       client,
		tokens:    tokens,
		navigator: navigator,
		loading:   true,
		display:   DisplayLogin,
	}
}

// OnLoadingChange registers fn to be called when loading flips.
func (v *Viewer) OnLoadingChange(fn func(bool)) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.observers = append(v.observers, fn)
}

// Activate fetches the profile. Only the first call performs a request;
// later calls return the first outcome. Any failure, an absent token
// included, navigates to the login screen.
func (v *Viewer) Activate(ctx context.Context) error {
	ctx = logger.WithFlow(ctx, "user")
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return pkgerrors.New(pkgerrors.FlowDisposed)
	}
	if v.activated {
		defer v.mu.Unlock()
		if v.loading {
			return pkgerrors.New(pkgerrors.SubmitInFlight)
		}
		return v.err
	}
	v.activated = true
	ctx, v.cancel = context.WithCancel(ctx)
	observers := v.snapshotObservers()
	v.mu.Unlock()
	notify(observers, true)

	profile, err := v.fetch(ctx)

	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		logger.Info(ctx, "profile result discarded")
		return pkgerrors.New(pkgerrors.ResultDiscarded)
	}
	v.cancel()
	v.loading = false
	if err != nil {
		v.err = err
	} else {
		v.profile = &profile
		v.display = DisplayLogout
	}
	observers = v.snapshotObservers()
	v.mu.Unlock()
	notify(observers, false)

	if err != nil {
		logger.Warn(ctx, "profile fetch failed, redirecting to login",
			zap.Int("code", int(pkgerrors.GetCode(err))),
			zap.Int("status", pkgerrors.Status(err)),
			zap.Error(err),
		)
		if stack := pkgerrors.StackOf(err); stack != "" {
			logger.Debug(ctx, "profile error origin", zap.String("stack", stack))
		}
		v.navigator.Navigate(nav.RouteLogin)
		return err
	}
	logger.Info(ctx, "profile loaded", zap.String("username", profile.Username))
	return nil
}

func (v *Viewer) fetch(ctx context.Context) (api.UserProfile, error) {
	token, err := v.tokens.Token(ctx)
	if err != nil {
		return api.UserProfile{}, err
	}
	return v.api.Profile(ctx, token)
}

// Dispose tears the screen down. A fetch still in flight is cancelled and
// its result ignored.
func (v *Viewer) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.disposed = true
	if v.cancel != nil {
		v.cancel()
	}
	wasLoading := v.activated && v.loading
	v.loading = false
	observers := v.snapshotObservers()
	v.mu.Unlock()
	if wasLoading {
		notify(observers, false)
	}
}

// Loading is true until the fetch completes.
func (v *Viewer) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *Viewer) Display() Display {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.display
}

// Profile returns the fetched profile, if any.
func (v *Viewer) Profile() (api.UserProfile, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.profile == nil {
		return api.UserProfile{}, false
	}
	return *v.profile, true
}

// Render writes the screen. Nothing is written after a failed fetch.
func (v *Viewer) Render(w io.Writer) error {
	v.mu.Lock()
	loading, profile, display := v.loading, v.profile, v.display
	v.mu.Unlock()

	if loading {
		_, err := fmt.Fprintln(w, loader.Line(""))
		return err
	}
	if profile == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "Hey 👋, %s\nGood To See You Here 😍\n[%s] %s\n", profile.Username, display, nav.RouteLogout)
	return err
}

func (v *Viewer) snapshotObservers() []func(bool) {
	observers := make([]func(bool), len(v.observers))
	copy(observers, v.observers)
	return observers
}

func notify(observers []func(bool), loading bool) {
	for _, fn := range observers {
		fn(loading)
	}
}
