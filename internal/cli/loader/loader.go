// Package loader draws the blocking loading indicator shown while a form
// submission or profile fetch is outstanding.
package loader

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/chzyer/readline"
)

// DefaultLabel is printed next to the spinner.
const DefaultLabel = "Loading..."

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Line is the static form of the indicator, used when a screen is rendered
// as text instead of animated.
func Line(label string) string {
	if label == "" {
		label = DefaultLabel
	}
	return frames[0] + " " + label
}

// Option customizes a Spinner.
type Option func(*Spinner)

// WithInterval sets the frame interval.
func WithInterval(d time.Duration) Option {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAnimation forces animation on or off. By default the spinner animates
// only when the writer is a terminal file; wrapped writers need this option.
func WithAnimation(enabled bool) Option {
	return func(s *Spinner) {
		s.animate = enabled
	}
}

// Spinner shows and hides the indicator. It is safe for concurrent use.
type Spinner struct {
	w        io.Writer
	interval time.Duration
	animate  bool

	mu      sync.Mutex
	visible bool
	label   string
	stop    chan struct{}
	done    chan struct{}
}

func New(w io.Writer, opts ...Option) *Spinner {
	s := &Spinner{
		w:        w,
		interval: 100 * time.Millisecond,
		animate:  isTerminal(w),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set shows the indicator when loading is true and hides it otherwise.
// It matches the status observer signature of the form controllers.
func (s *Spinner) Set(loading bool) {
	if loading {
		s.Show(DefaultLabel)
		return
	}
	s.Hide()
}

// Show displays the indicator. Showing a visible indicator is a no-op.
func (s *Spinner) Show(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible {
		return
	}
	s.visible = true
	s.label = label
	if !s.animate {
		fmt.Fprintln(s.w, Line(label))
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.spin(s.stop, s.done, label)
}

// Hide removes the indicator and waits for the animation to stop.
func (s *Spinner) Hide() {
	s.mu.Lock()
	if !s.visible {
		s.mu.Unlock()
		return
	}
	s.visible = false
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Visible reports whether the indicator is showing.
func (s *Spinner) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Spinner) spin(stop <-chan struct{}, done chan<- struct{}, label string) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%s %s", frames[i%len(frames)], label)
		select {
		case <-stop:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return readline.IsTerminal(int(f.Fd()))
}
