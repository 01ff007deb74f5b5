package form_test

import (
	"testing"

	"authportal/internal/cli/form"
	"authportal/internal/testutil"
	pkgerrors "authportal/pkg/errors"
)

func TestPasswordPolicy(t *testing.T) {
	policy := form.DefaultPasswordPolicy()
	tests := []struct {
		password string
		want     []string
	}{
		{password: "Str0ng!pw", want: nil},
		{password: "abc", want: []string{"length", "uppercase", "digit", "symbol"}},
		{password: "Abcdefg1", want: []string{"symbol"}},
		{password: "ABCDEFG1!", want: []string{"lowercase"}},
		{password: "Abcdefgh!", want: []string{"digit"}},
		{password: "Abcdef1-_", want: []string{"symbol"}},
		{password: `Abcdef1"`, want: nil},
		{password: "Äbcdef1!", want: []string{"uppercase"}},
		{password: "", want: []string{"length", "uppercase", "lowercase", "digit", "symbol"}},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			testutil.AssertEqual(t, policy.Violations(tt.password), tt.want)
			testutil.AssertEqual(t, policy.Strong(tt.password), tt.want == nil)
		})
	}
}

func TestPasswordPolicyCountsUTF16Units(t *testing.T) {
	policy := form.DefaultPasswordPolicy()
	tests := []struct {
		password string
		want     []string
	}{
		{password: "Aa1!😀😀", want: nil},
		{password: "Aa1!😀", want: []string{"length"}},
		{password: "Aa1!éééé", want: nil},
		{password: "Aa1!ééé", want: []string{"length"}},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			testutil.AssertEqual(t, policy.Violations(tt.password), tt.want)
		})
	}
}

func TestParseField(t *testing.T) {
	tests := []struct {
		name string
		want form.Field
	}{
		{name: "Username", want: form.FieldUsername},
		{name: "username", want: form.FieldUsername},
		{name: "EMAIL", want: form.FieldEmail},
		{name: " password ", want: form.FieldPassword},
	}
	for _, tt := range tests {
		got, err := form.ParseField(tt.name)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tt.name, err)
		}
		testutil.AssertEqual(t, got, tt.want)
	}

	_, err := form.ParseField("token")
	if !pkgerrors.Is(err, pkgerrors.UnknownField) {
		t.Fatalf("expected unknown field, got %v", err)
	}
}
