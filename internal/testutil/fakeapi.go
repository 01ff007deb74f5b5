package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Call is one request seen by the fake API.
type Call struct {
	Method        string
	Path          string
	Body          string
	Authorization string
	RequestID     string
}

// Reply is a canned response.
type Reply struct {
	Status int
	// Body is rendered as JSON unless Raw is set.
	Body interface{}
	Raw  string
}

// FakeAuthAPI serves /api/login, /api/register and /api/user from canned
// replies and records every call.
type FakeAuthAPI struct {
	Server *httptest.Server

	t        *testing.T
	mu       sync.Mutex
	calls    []Call
	replies  map[string]Reply
	users    map[string]Reply
	gates    map[string]chan struct{}
	arrivals map[string]chan struct{}
}

// NewFakeAuthAPI starts a server that is closed with the test.
func NewFakeAuthAPI(t *testing.T) *FakeAuthAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &FakeAuthAPI{
		t:        t,
		replies:  map[string]Reply{},
		users:    map[string]Reply{},
		gates:    map[string]chan struct{}{},
		arrivals: map[string]chan struct{}{},
	}
	router := gin.New()
	router.Use(echoRequestID())
	router.POST("/api/login", f.handle)
	router.POST("/api/register", f.handle)
	router.GET("/api/user", f.handleUser)
	f.Server = httptest.NewServer(router)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL of the fake server.
func (f *FakeAuthAPI) URL() string {
	return f.Server.URL
}

// SetReply sets the reply for a POST path.
func (f *FakeAuthAPI) SetReply(path string, reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[path] = reply
}

// SetUser makes GET /api/user answer reply for "Bearer <token>".
// Unknown tokens get 401.
func (f *FakeAuthAPI) SetUser(token string, reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[token] = reply
}

// Hold blocks requests to path until the returned release func is called.
// The arrived channel receives once per request that reached the server.
func (f *FakeAuthAPI) Hold(path string) (arrived <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	arrivals := make(chan struct{}, 16)
	f.gates[path] = gate
	f.arrivals[path] = arrivals
	var once sync.Once
	release = func() { once.Do(func() { close(gate) }) }
	f.t.Cleanup(release)
	return arrivals, release
}

// Calls returns a copy of the recorded calls.
func (f *FakeAuthAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount counts the calls to path.
func (f *FakeAuthAPI) CallCount(path string) int {
	n := 0
	for _, call := range f.Calls() {
		if call.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAuthAPI) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Body:          string(body),
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetString(requestIDKey),
	})
	gate := f.gates[c.Request.URL.Path]
	arrivals := f.arrivals[c.Request.URL.Path]
	f.mu.Unlock()

	if arrivals != nil {
		arrivals <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
}

func (f *FakeAuthAPI) handle(c *gin.Context) {
	f.record(c)
	f.mu.Lock()
	reply, ok := f.replies[c.Request.URL.Path]
	f.mu.Unlock()
	if !ok {
		reply = Reply{Status: http.StatusNotFound, Body: gin.H{"message": "no reply configured"}}
	}
	write(c, reply)
}

func (f *FakeAuthAPI) handleUser(c *gin.Context) {
	f.record(c)
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))
	f.mu.Lock()
	reply, ok := f.users[token]
	f.mu.Unlock()
	if !ok || token == "" {
		reply = Reply{Status: http.StatusUnauthorized, Body: gin.H{"message": "unauthorized"}}
	}
	write(c, reply)
}

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// echoRequestID keeps the caller's request id, minting one when absent, and
// returns it on the response.
func echoRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

func write(c *gin.Context, reply Reply) {
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if reply.Raw != "" || reply.Body == nil {
		c.Data(status, "application/json", []byte(reply.Raw))
		return
	}
	c.JSON(status, reply.Body)
}
