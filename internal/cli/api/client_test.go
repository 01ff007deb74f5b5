package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"authportal/internal/cli/api"
	httpclient "authportal/internal/cli/http"
	"authportal/internal/testutil"
	pkgerrors "authportal/pkg/errors"

	"github.com/gin-gonic/gin"
)

func newClient(t *testing.T) (*api.Client, *testutil.FakeAuthAPI) {
	t.Helper()
	fake := testutil.NewFakeAuthAPI(t)
	return api.New(httpclient.New(fake.URL(), 2*time.Second)), fake
}

func TestLoginParsesBodyOfAnyStatus(t *testing.T) {
	client, fake := newClient(t)
	fake.SetReply(api.PathLogin, testutil.Reply{
		Status: http.StatusUnauthorized,
		Body:   gin.H{"message": "bad credentials", "token": "T0"},
	})

	reply, err := client.Login(context.Background(), api.LoginRequest{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	testutil.AssertFalse(t, reply.OK(), "401 should not be OK")
	testutil.AssertEqual(t, reply.Message, "bad credentials")
	testutil.AssertTrue(t, reply.HasToken, "token should be extracted regardless of status")
	testutil.AssertEqual(t, reply.Token, "T0")

	failure := reply.Failure("Login failed")
	testutil.AssertEqual(t, failure.Error(), "bad credentials")
	testutil.AssertEqual(t, pkgerrors.GetKind(failure), pkgerrors.KindRemote)

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	var sent map[string]string
	testutil.MustUnmarshalJSON(t, []byte(calls[0].Body), &sent)
	testutil.AssertEqual(t, sent, map[string]string{"email": "a@b.com", "password": "x"})
	testutil.AssertTrue(t, reply.RequestID != "", "request id assigned")
	testutil.AssertEqual(t, calls[0].RequestID, reply.RequestID)
}

func TestFailureFallback(t *testing.T) {
	reply := api.Reply{StatusCode: http.StatusInternalServerError}
	testutil.AssertEqual(t, reply.Failure("Registration failed").Error(), "Registration failed")
	testutil.AssertEqual(t, pkgerrors.Status(reply.Failure("x")), http.StatusInternalServerError)
	if (api.Reply{StatusCode: http.StatusOK}).Failure("x") != nil {
		t.Fatal("2xx reply should have no failure")
	}
}

func TestRegisterSendsCapitalizedUsername(t *testing.T) {
	client, fake := newClient(t)
	fake.SetReply(api.PathRegister, testutil.Reply{Status: http.StatusCreated, Body: gin.H{"message": "created"}})

	reply, err := client.Register(context.Background(), api.RegisterRequest{Username: "neo", Email: "n@m.io", Password: "Str0ng!pw"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	testutil.AssertTrue(t, reply.OK(), "201 should be OK")
	testutil.AssertFalse(t, reply.HasToken, "register issues no token")

	var sent map[string]string
	testutil.MustUnmarshalJSON(t, []byte(fake.Calls()[0].Body), &sent)
	testutil.AssertEqual(t, sent["Username"], "neo")
}

func TestMalformedBodyIsNetworkError(t *testing.T) {
	client, fake := newClient(t)
	fake.SetReply(api.PathLogin, testutil.Reply{Status: http.StatusBadGateway, Raw: "<html>bad gateway</html>"})

	_, err := client.Login(context.Background(), api.LoginRequest{Email: "a", Password: "b"})
	if !pkgerrors.Is(err, pkgerrors.MalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
	testutil.AssertEqual(t, pkgerrors.GetKind(err), pkgerrors.KindNetwork)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	client := api.New(httpclient.New("http://127.0.0.1:1", time.Second))
	_, err := client.Login(context.Background(), api.LoginRequest{Email: "a", Password: "b"})
	if !pkgerrors.Is(err, pkgerrors.NetworkFailure) {
		t.Fatalf("expected network failure, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	client, fake := newClient(t)
	fake.SetUser("T1", testutil.Reply{Body: gin.H{"Username": "neo", "email": "n@m.io"}})

	profile, err := client.Profile(context.Background(), "T1")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	testutil.AssertEqual(t, profile.Username, "neo")
	testutil.AssertEqual(t, profile.Fields["email"], "n@m.io")
	testutil.AssertEqual(t, fake.Calls()[0].Authorization, "Bearer T1")

	_, err = client.Profile(context.Background(), "")
	if !pkgerrors.Is(err, pkgerrors.Unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	testutil.AssertEqual(t, fake.CallCount(api.PathUser), 2)
}

func TestProfileUsernameRendering(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
		want string
	}{
		{name: "string", body: gin.H{"Username": "neo"}, want: "neo"},
		{name: "number", body: gin.H{"Username": 42}, want: "42"},
		{name: "bool", body: gin.H{"Username": true}, want: "true"},
		{name: "null", body: gin.H{"Username": nil}, want: ""},
		{name: "absent", body: gin.H{"email": "n@m.io"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newClient(t)
			fake.SetUser("T1", testutil.Reply{Body: tt.body})

			profile, err := client.Profile(context.Background(), "T1")
			if err != nil {
				t.Fatalf("profile failed: %v", err)
			}
			testutil.AssertEqual(t, profile.Username, tt.want)
		})
	}
}
