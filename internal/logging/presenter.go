// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"

	apperr "lodgeportal/cli/internal/errors"
)

// PresentError formats an error for user display. Typed errors show only their user
// message; anything else is shown as masked raw text. action, when set, prefixes the line.
func PresentError(action string, err error) string {
	if err == nil {
		return ""
	}
	msg := Mask(err.Error())
	var e *apperr.E
	if errors.As(err, &e) {
		msg = apperr.UserMessage(err)
	}
	if action == "" {
		return msg
	}
	return action + ": " + msg
}
