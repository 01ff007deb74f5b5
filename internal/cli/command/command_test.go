package command_test

import (
	"testing"

	"authportal/internal/cli/command"
	"authportal/internal/testutil"
	pkgerrors "authportal/pkg/errors"
)

func TestParseLoginParams(t *testing.T) {
	inv, err := command.Parse(command.Registry(), `login mail=a@b.com "pass=p w d"`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	testutil.AssertEqual(t, inv.Command.Name, command.Login)
	testutil.AssertEqual(t, inv.Params.Get("email"), "a@b.com")
	testutil.AssertEqual(t, inv.Params.Get("password"), "p w d")
	testutil.AssertEqual(t, len(inv.Args), 0)
	testutil.AssertEqual(t, len(inv.Params.Missing(inv.Command.Fields)), 0)
}

func TestParseRegisterMissing(t *testing.T) {
	inv, err := command.Parse(command.Registry(), "register user=neo")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	testutil.AssertEqual(t, inv.Params.Get("Username"), "neo")
	var names []string
	for _, field := range inv.Params.Missing(inv.Command.Fields) {
		names = append(names, field.Name)
	}
	testutil.AssertEqual(t, names, []string{"email", "password"})
}

func TestParsePositional(t *testing.T) {
	inv, err := command.Parse(command.Registry(), "field email 'a=b@c.d'")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	testutil.AssertEqual(t, inv.Args, []string{"email", "a=b@c.d"})
	testutil.AssertEqual(t, inv.Arg(1), "a=b@c.d")
	testutil.AssertEqual(t, inv.Arg(5), "")

	inv, err = command.Parse(command.Registry(), "QUIT")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	testutil.AssertEqual(t, inv.Command.Name, command.Exit)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "unknown command", line: "dance"},
		{name: "bare login token", line: "login a@b.com"},
		{name: "undeclared param", line: "login token=abc"},
		{name: "missing args", line: "goto"},
		{name: "set needs two args", line: "set base"},
		{name: "unterminated quote", line: `login "email=a`},
		{name: "empty", line: "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := command.Parse(command.Registry(), tt.line)
			if !pkgerrors.Is(err, pkgerrors.InvalidParams) {
				t.Fatalf("expected invalid params, got %v", err)
			}
		})
	}
}

func TestRegistryCoversOrdered(t *testing.T) {
	registry := command.Registry()
	for _, cmd := range command.Ordered() {
		_, ok := registry[cmd.Name]
		testutil.AssertTrue(t, ok, "registry missing "+cmd.Name)
	}
}
