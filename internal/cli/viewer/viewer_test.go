package viewer_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"authportal/internal/cli/api"
	"authportal/internal/cli/form"
	httpclient "authportal/internal/cli/http"
	"authportal/internal/cli/loader"
	"authportal/internal/cli/nav"
	"authportal/internal/cli/session"
	"authportal/internal/cli/state"
	"authportal/internal/cli/viewer"
	"authportal/internal/testutil"
	pkgerrors "authportal/pkg/errors"

	"github.com/gin-gonic/gin"
)

type env struct {
	fake    *testutil.FakeAuthAPI
	client  *api.Client
	session *session.Context
	rec     *nav.Recorder
}

func newEnv(t *testing.T, now func() time.Time) *env {
	t.Helper()
	fake := testutil.NewFakeAuthAPI(t)
	var opts []state.StoreOption
	if now != nil {
		opts = append(opts, state.WithClock(now))
	}
	tokens := state.NewTokenStore(state.NewMemoryStorage(), "jwtoken", time.Hour, opts...)
	return &env{
		fake:    fake,
		client:  api.New(httpclient.New(fake.URL(), 2*time.Second)),
		session: session.New(tokens),
		rec:     &nav.Recorder{},
	}
}

func (e *env) viewer() *viewer.Viewer {
	return viewer.New(e.client, e.session, e.rec)
}

func TestLoginThenViewProfile(t *testing.T) {
	e := newEnv(t, nil)
	e.fake.SetReply(api.PathLogin, testutil.Reply{Body: gin.H{"token": "T1"}})
	e.fake.SetUser("T1", testutil.Reply{Body: gin.H{"Username": "neo", "email": "n@m.io"}})

	login := form.NewLoginForm(e.client, e.session, e.rec)
	login.SetEmail("n@m.io")
	login.SetPassword("Str0ng!pw")
	if err := login.Submit(context.Background()); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	token, _ := e.session.Token(context.Background())
	testutil.AssertEqual(t, token, "T1")
	testutil.AssertEqual(t, e.rec.Last(), nav.RouteUser)

	v := e.viewer()
	testutil.AssertEqual(t, v.Display(), viewer.DisplayLogin)
	if err := v.Activate(context.Background()); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	profile, ok := v.Profile()
	testutil.AssertTrue(t, ok, "profile loaded")
	testutil.AssertEqual(t, profile.Username, "neo")
	testutil.AssertEqual(t, profile.Fields["email"], "n@m.io")
	testutil.AssertEqual(t, v.Display(), viewer.DisplayLogout)
	testutil.AssertFalse(t, v.Loading(), "loading stops after success")

	var out bytes.Buffer
	if err := v.Render(&out); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	testutil.AssertEqual(t, out.String(), "Hey 👋, neo\nGood To See You Here 😍\n[Logout] /logout\n")

	calls := e.fake.Calls()
	testutil.AssertEqual(t, calls[len(calls)-1].Authorization, "Bearer T1")
	testutil.AssertEqual(t, e.rec.Routes(), []nav.Route{nav.RouteUser})
}

func TestAbsentTokenRedirectsToLogin(t *testing.T) {
	e := newEnv(t, nil)
	v := e.viewer()

	err := v.Activate(context.Background())
	if !pkgerrors.Is(err, pkgerrors.Unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	testutil.AssertEqual(t, e.fake.CallCount(api.PathUser), 1)
	testutil.AssertTrue(t, strings.HasPrefix(e.fake.Calls()[0].Authorization, "Bearer"), "bearer header sent even without a token")
	testutil.AssertEqual(t, e.rec.Routes(), []nav.Route{nav.RouteLogin})

	_, ok := v.Profile()
	testutil.AssertFalse(t, ok, "no profile after failure")
	testutil.AssertEqual(t, v.Display(), viewer.DisplayLogin)
	var out bytes.Buffer
	_ = v.Render(&out)
	testutil.AssertEqual(t, out.String(), "")
}

func TestExpiredTokenRedirectsToLogin(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := newEnv(t, func() time.Time { return now })
	e.fake.SetUser("T1", testutil.Reply{Body: gin.H{"Username": "neo"}})
	if err := e.session.Establish(context.Background(), "T1"); err != nil {
		t.Fatalf("establish failed: %v", err)
	}
	now = now.Add(2 * time.Hour)

	err := e.viewer().Activate(context.Background())
	testutil.AssertEqual(t, pkgerrors.GetKind(err), pkgerrors.KindRemote)
	testutil.AssertEqual(t, e.rec.Last(), nav.RouteLogin)
}

func TestServerErrorRedirectsToLogin(t *testing.T) {
	e := newEnv(t, nil)
	e.fake.SetUser("T1", testutil.Reply{Status: http.StatusInternalServerError, Body: gin.H{"message": "boom"}})
	_ = e.session.Establish(context.Background(), "T1")

	err := e.viewer().Activate(context.Background())
	testutil.AssertEqual(t, pkgerrors.Status(err), http.StatusInternalServerError)
	testutil.AssertEqual(t, e.rec.Routes(), []nav.Route{nav.RouteLogin})
}

func TestFailedFetchLogsErrorOrigin(t *testing.T) {
	logs := testutil.ObserveLogs(t)
	e := newEnv(t, nil)
	e.fake.SetUser("T1", testutil.Reply{Status: http.StatusInternalServerError, Body: gin.H{"message": "boom"}})
	_ = e.session.Establish(context.Background(), "T1")

	_ = e.viewer().Activate(context.Background())
	origin := logs.FilterMessage("profile error origin").All()
	if len(origin) != 1 {
		t.Fatalf("expected one origin entry, got %d", len(origin))
	}
	stack, _ := origin[0].ContextMap()["stack"].(string)
	testutil.AssertTrue(t, strings.Contains(stack, "api.(*Client).Profile"), "stack names the failing call")
}

func TestNetworkFailureRedirectsToLogin(t *testing.T) {
	rec := &nav.Recorder{}
	tokens := state.NewTokenStore(state.NewMemoryStorage(), "jwtoken", time.Hour)
	v := viewer.New(api.New(httpclient.New("http://127.0.0.1:1", time.Second)), session.New(tokens), rec)

	err := v.Activate(context.Background())
	testutil.AssertEqual(t, pkgerrors.GetKind(err), pkgerrors.KindNetwork)
	testutil.AssertEqual(t, rec.Routes(), []nav.Route{nav.RouteLogin})
}

func TestActivateFetchesOnce(t *testing.T) {
	e := newEnv(t, nil)
	e.fake.SetUser("T1", testutil.Reply{Body: gin.H{"Username": "neo"}})
	_ = e.session.Establish(context.Background(), "T1")
	v := e.viewer()

	for i := 0; i < 3; i++ {
		if err := v.Activate(context.Background()); err != nil {
			t.Fatalf("activate %d failed: %v", i, err)
		}
	}
	testutil.AssertEqual(t, e.fake.CallCount(api.PathUser), 1)

	failing := newEnv(t, nil)
	fv := failing.viewer()
	first := fv.Activate(context.Background())
	second := fv.Activate(context.Background())
	testutil.AssertEqual(t, second, first)
	testutil.AssertEqual(t, failing.fake.CallCount(api.PathUser), 1)
	testutil.AssertEqual(t, len(failing.rec.Routes()), 1)
}

func TestLoaderShownWhileFetching(t *testing.T) {
	e := newEnv(t, nil)
	e.fake.SetUser("T1", testutil.Reply{Body: gin.H{"Username": "neo"}})
	_ = e.session.Establish(context.Background(), "T1")
	arrived, release := e.fake.Hold(api.PathUser)

	v := e.viewer()
	var seen []bool
	v.OnLoadingChange(func(loading bool) { seen = append(seen, loading) })
	done := make(chan error, 1)
	go func() { done <- v.Activate(context.Background()) }()
	<-arrived

	var out bytes.Buffer
	_ = v.Render(&out)
	testutil.AssertEqual(t, out.String(), loader.Line("")+"\n")
	err := v.Activate(context.Background())
	if !pkgerrors.Is(err, pkgerrors.SubmitInFlight) {
		t.Fatalf("expected in-flight, got %v", err)
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	testutil.AssertEqual(t, seen, []bool{true, false})
}

func TestDisposeDiscardsLateProfile(t *testing.T) {
	e := newEnv(t, nil)
	e.fake.SetUser("T1", testutil.Reply{Body: gin.H{"Username": "neo"}})
	_ = e.session.Establish(context.Background(), "T1")
	arrived, release := e.fake.Hold(api.PathUser)

	v := e.viewer()
	done := make(chan error, 1)
	go func() { done <- v.Activate(context.Background()) }()
	<-arrived

	v.Dispose()
	release()
	err := <-done
	if !pkgerrors.Is(err, pkgerrors.ResultDiscarded) {
		t.Fatalf("expected discarded, got %v", err)
	}
	_, ok := v.Profile()
	testutil.AssertFalse(t, ok, "late profile ignored")
	testutil.AssertFalse(t, v.Loading(), "dispose hides the loader")
	testutil.AssertEqual(t, len(e.rec.Routes()), 0)

	if !pkgerrors.Is(v.Activate(context.Background()), pkgerrors.FlowDisposed) {
		t.Fatal("activate after dispose should fail")
	}
}
