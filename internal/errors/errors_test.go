package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "direct", err: New(Validation, "Username is required"), want: Validation},
		{name: "wrapped by fmt", err: fmt.Errorf("login: %w", Wrap(Connection, "offline", cause)), want: Connection},
		{name: "plain error", err: cause, want: Unknown},
		{name: "nil", err: nil, want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(Unknown, "failed", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the wrapped cause")
	}
	if !Is(err, Unknown) || Is(err, Validation) {
		t.Fatal("Is() matched the wrong kind")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(InvalidCredentials, "Invalid username or password.")); got != "Invalid username or password." {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(stderrors.New("read tcp 10.0.0.1: i/o timeout")); got != "Something went wrong. Please try again." {
		t.Errorf("UserMessage() leaked raw error: %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil) = %q", got)
	}
}

func TestErrorString(t *testing.T) {
	err := Wrap(Connection, "Cannot reach the portal", stderrors.New("timeout"))
	if got := err.Error(); got != "connection: Cannot reach the portal: timeout" {
		t.Errorf("Error() = %q", got)
	}
	if got := New(Validation, "Code is required").Error(); got != "validation: Code is required" {
		t.Errorf("Error() = %q", got)
	}
}
