package errors_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	. "authportal/pkg/errors"
)

func TestErrorCode_Message(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{Success, "Success"},
		{RequiredFieldEmpty, "missing fields"},
		{PasswordTooWeak, "weak password"},
		{NetworkFailure, "Network request failed"},
		{ErrorCode(99999), "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.Message(); got != tt.want {
				t.Errorf("Message() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorCode_Kind(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorKind
	}{
		{Success, KindNone},
		{RequiredFieldEmpty, KindValidation},
		{PasswordTooWeak, KindValidation},
		{InvalidParams, KindValidation},
		{RemoteRejected, KindRemote},
		{Unauthorized, KindRemote},
		{NetworkFailure, KindNetwork},
		{MalformedResponse, KindNetwork},
		{SubmitInFlight, KindFlow},
		{TokenStoreFailure, KindStorage},
		{InternalServerError, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code.Message(), func(t *testing.T) {
			if got := tt.code.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	err := New(PasswordTooWeak)

	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if err.Code != PasswordTooWeak {
		t.Errorf("Code = %v, want %v", err.Code, PasswordTooWeak)
	}

	if err.Error() != PasswordTooWeak.Message() {
		t.Errorf("Error() = %v, want %v", err.Error(), PasswordTooWeak.Message())
	}
}

func TestNewf(t *testing.T) {
	err := Newf(UnknownField, "unknown field %q", "age")

	want := `unknown field "age"`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrap(originalErr, NetworkFailure)

	if wrappedErr.Code != NetworkFailure {
		t.Errorf("Code = %v, want %v", wrappedErr.Code, NetworkFailure)
	}

	if wrappedErr.Unwrap() != originalErr {
		t.Error("Unwrap() should return original error")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "nil error",
			err:  nil,
			want: Success,
		},
		{
			name: "custom error",
			err:  New(SubmitInFlight),
			want: SubmitInFlight,
		},
		{
			name: "wrapped custom error",
			err:  fmt.Errorf("submit: %w", New(PasswordTooWeak)),
			want: PasswordTooWeak,
		},
		{
			name: "standard error",
			err:  errors.New("standard error"),
			want: InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(RequiredFieldEmpty)

	if !Is(err, RequiredFieldEmpty) {
		t.Error("Is() should return true for matching code")
	}

	if Is(err, PasswordTooWeak) {
		t.Error("Is() should return false for non-matching code")
	}

	if Is(nil, RequiredFieldEmpty) {
		t.Error("Is() should return false for nil error")
	}
}

func TestCommonErrorConstructors(t *testing.T) {
	t.Run("ValidationError", func(t *testing.T) {
		err := ValidationError(RequiredFieldEmpty, "Please fill in all fields.")
		if err.Code != RequiredFieldEmpty {
			t.Error("ValidationError should keep the code")
		}
		if err.Error() != "Please fill in all fields." {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("RemoteError", func(t *testing.T) {
		err := RemoteError(500, "")
		if err.Code != RemoteRejected {
			t.Error("RemoteError should use RemoteRejected code")
		}
		if Status(err) != 500 {
			t.Errorf("Status() = %d, want 500", Status(err))
		}
		if err.Error() != RemoteRejected.Message() {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("RemoteError unauthorized", func(t *testing.T) {
		err := RemoteError(401, "bad credentials")
		if err.Code != Unauthorized {
			t.Error("401 should map to Unauthorized")
		}
		if err.Error() != "bad credentials" {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("NetworkError", func(t *testing.T) {
		originalErr := errors.New("dial tcp: no such host")
		err := NetworkError(originalErr)
		if err.Code != NetworkFailure {
			t.Error("NetworkError should use NetworkFailure code")
		}
		if GetKind(err) != KindNetwork {
			t.Error("NetworkError should be network kind")
		}
	})
}

func TestStackOf(t *testing.T) {
	stack := StackOf(Wrapf(errors.New("eof"), NetworkFailure, "read failed"))
	if !strings.Contains(stack, "TestStackOf") {
		t.Errorf("stack should start at the caller, got %s", stack)
	}
	if strings.Contains(stack, "errors.build") || strings.Contains(stack, "errors.Wrapf") {
		t.Errorf("stack should not include constructor frames, got %s", stack)
	}

	if StackOf(errors.New("plain")) != "" {
		t.Error("foreign errors carry no stack")
	}
}
