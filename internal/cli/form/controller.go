package form

import (
	"context"
	"sync"

	"authportal/internal/cli/nav"
	pkgerrors "authportal/pkg/errors"
	"authportal/pkg/utils/logger"

	"go.uber.org/zap"
)

// User-visible messages.
const (
	MsgMissingFields  = "Please fill in all fields."
	MsgWeakPassword   = "Password must be at least 8 characters long and include uppercase, lowercase, number, and special character."
	MsgLoginOK        = "Login successful!"
	MsgLoginFailed    = "Login failed"
	MsgRegisterOK     = "Registration successful!"
	MsgRegisterFailed = "Registration failed"
)

// Status is what the screen renders: a loading flag and at most one of an
// error or a success message.
type Status struct {
	Loading bool
	Error   string
	Success string
}

// Phase is the submit state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// outcome is the result of one remote exchange.
type outcome struct {
	success string
	route   nav.Route
	err     error
}

// controller is the submit machinery shared by the login and register forms.
// All fields are guarded by mu.
type controller struct {
	flow      string
	navigator nav.Navigator

	mu            sync.Mutex
	status        Status
	phase         Phase
	secretVisible bool
	inFlight      bool
	disposed      bool
	// generation identifies the current submission. Dispose and every new
	// submission bump it; a response tagged with an older value is stale.
	generation uint64
	cancel     context.CancelFunc
	observers  []func(Status)
}

func newController(flow string, navigator nav.Navigator) *controller {
	if navigator == nil {
		navigator = nav.NavigatorFunc(func(nav.Route) {})
	}
	return &controller{flow: flow, navigator: navigator}
}

// Status returns a snapshot of the form status.
func (c *controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Phase returns the submit state machine position.
func (c *controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Loading mirrors Status().Loading.
func (c *controller) Loading() bool {
	return c.Status().Loading
}

// ToggleSecretVisibility flips masked/plain rendering of the password and
// returns the new setting. The password value is not touched.
func (c *controller) ToggleSecretVisibility() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secretVisible = !c.secretVisible
	return c.secretVisible
}

// SecretVisible reports whether the password renders in plain text.
func (c *controller) SecretVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secretVisible
}

// OnStatusChange registers fn to be called after every status change.
func (c *controller) OnStatusChange(fn func(Status)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// dispose tears the form down. Any in-flight response is discarded when it
// arrives. reset clears the variant's credentials under the lock.
func (c *controller) dispose(reset func()) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.inFlight = false
	c.phase = PhaseIdle
	c.status.Loading = false
	reset()
	status, observers := c.status, c.snapshotObservers()
	c.mu.Unlock()
	notify(observers, status)
}

// begin runs validation and, when it passes, moves to Submitting. It returns
// a context that Dispose cancels and the generation of this submission.
// validate runs under the lock.
func (c *controller) begin(ctx context.Context, validate func() *pkgerrors.Error) (context.Context, uint64, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ctx, 0, pkgerrors.New(pkgerrors.FlowDisposed)
	}
	if c.inFlight {
		c.mu.Unlock()
		logger.Warn(ctx, "submit ignored, request in flight")
		return ctx, 0, pkgerrors.New(pkgerrors.SubmitInFlight)
	}

	c.phase = PhaseValidating
	if verr := validate(); verr != nil {
		c.phase = PhaseIdle
		c.status = Status{Error: verr.Error()}
		status, observers := c.status, c.snapshotObservers()
		c.mu.Unlock()
		logger.Warn(ctx, "validation failed",
			zap.Int("code", int(verr.Code)),
			zap.String("message", verr.Error()),
		)
		notify(observers, status)
		return ctx, 0, verr
	}

	c.generation++
	gen := c.generation
	ctx, c.cancel = context.WithCancel(ctx)
	c.inFlight = true
	c.phase = PhaseSubmitting
	c.status = Status{Loading: true}
	status, observers := c.status, c.snapshotObservers()
	c.mu.Unlock()
	notify(observers, status)
	return ctx, gen, nil
}

// current reports whether gen is still the live submission.
func (c *controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.disposed && c.generation == gen
}

// finish applies the outcome of submission gen. A stale generation leaves
// every piece of state alone. onSuccess runs under the lock.
func (c *controller) finish(ctx context.Context, gen uint64, out outcome, onSuccess func()) error {
	c.mu.Lock()
	if c.disposed || c.generation != gen {
		c.mu.Unlock()
		logger.Info(ctx, "stale result discarded")
		return pkgerrors.New(pkgerrors.ResultDiscarded)
	}
	c.cancel()
	c.cancel = nil
	c.inFlight = false
	c.phase = PhaseIdle
	if out.err != nil {
		c.status = Status{Error: out.err.Error()}
	} else {
		c.status = Status{Success: out.success}
		onSuccess()
	}
	status, observers := c.status, c.snapshotObservers()
	c.mu.Unlock()

	notify(observers, status)
	if out.err != nil {
		e := pkgerrors.GetError(out.err)
		logger.Error(ctx, c.flow+" failed",
			zap.Int("code", int(e.Code)),
			zap.String("kind", string(e.Code.Kind())),
			zap.String("message", e.Error()),
			zap.Int("status", pkgerrors.Status(out.err)),
		)
		if stack := pkgerrors.StackOf(out.err); stack != "" {
			logger.Debug(ctx, c.flow+" error origin", zap.String("stack", stack))
		}
		return out.err
	}
	logger.Info(ctx, c.flow+" succeeded", zap.String("next", string(out.route)))
	c.navigator.Navigate(out.route)
	return nil
}

func (c *controller) snapshotObservers() []func(Status) {
	observers := make([]func(Status), len(c.observers))
	copy(observers, c.observers)
	return observers
}

func notify(observers []func(Status), status Status) {
	for _, fn := range observers {
		fn(status)
	}
}
