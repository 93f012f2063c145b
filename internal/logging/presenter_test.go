package logging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperr "lodgeportal/cli/internal/errors"
)

func TestPresentError(t *testing.T) {
	cause := errors.New(`post "https://portal/api/authentication/token/": password=acacia`)
	tests := []struct {
		name   string
		action string
		err    error
		want   string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "typed", err: apperr.Wrap(apperr.InvalidCredentials, "Invalid username or password.", cause), want: "Invalid username or password."},
		{name: "typed unknown hides cause", err: apperr.Wrap(apperr.Unknown, "Try again.", cause), want: "Try again."},
		{name: "wrapped typed", action: "login", err: fmt.Errorf("run: %w", apperr.New(apperr.Validation, "Username and password are required.")), want: "login: Username and password are required."},
		{name: "raw is masked", err: cause, want: Mask(cause.Error())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PresentError(tt.action, tt.err))
		})
	}
	assert.NotContains(t, PresentError("", cause), "acacia")
}
