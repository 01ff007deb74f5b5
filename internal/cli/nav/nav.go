package nav

import "sync"

// Route is a screen path understood by the router.
type Route string

const (
	RouteLogin    Route = "/login"
	RouteRegister Route = "/register"
	RouteUser     Route = "/user"
	RouteLogout   Route = "/logout"
)

// All lists every known route.
func All() []Route {
	return []Route{RouteLogin, RouteRegister, RouteUser, RouteLogout}
}

// Parse validates a route string.
func Parse(value string) (Route, bool) {
	for _, r := range All() {
		if string(r) == value {
			return r, true
		}
	}
	return "", false
}

// Navigator triggers screen transitions. The flows only call it; the router
// decides what a route shows.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(route Route) {
	f(route)
}

// Recorder keeps every navigation in order. Used by tests and dry runs.
type Recorder struct {
	mu     sync.Mutex
	routes []Route
}

func (r *Recorder) Navigate(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Routes returns a copy of the recorded routes.
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}

// Last returns the most recent route, or "".
func (r *Recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}
