// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind discriminates gateway failures.
type ErrorKind string

const (
	KindTransport    ErrorKind = "transport"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindBadRequest   ErrorKind = "bad_request"
	KindServer       ErrorKind = "server"
	KindDecode       ErrorKind = "decode"
)

// Error is returned by every API method that fails.
type Error struct {
	Kind   ErrorKind
	Status int
	// Detail is the portal's "detail" message, if any.
	Detail string
	// Fields holds field-level validation messages (non_field_errors included).
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, " [fields: %s]", strings.Join(names, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// HasField reports whether the portal rejected the named field.
func (e *Error) HasField(name string) bool {
	_, ok := e.Fields[name]
	return ok
}

// FieldMessage returns the first message for a field, or "".
func (e *Error) FieldMessage(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// AsError extracts a gateway error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the gateway error kind, or "" when err is not a gateway error.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindBadRequest
	}
}

// newStatusError builds an Error from a non-2xx response body. The portal answers either
// {"detail": "..."} or a map of field names to message lists.
func newStatusError(status int, body []byte) *Error {
	e := &Error{Kind: kindForStatus(status), Status: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		e.Detail = strings.TrimSpace(truncate(string(body), 200))
		return e
	}
	for k, v := range raw {
		if k == "detail" || k == "error" || k == "message" {
			var s string
			if json.Unmarshal(v, &s) == nil && e.Detail == "" {
				e.Detail = s
			}
			continue
		}
		if msgs := decodeMessages(v); len(msgs) > 0 {
			if e.Fields == nil {
				e.Fields = map[string][]string{}
			}
			e.Fields[k] = msgs
		}
	}
	return e
}

func decodeMessages(v json.RawMessage) []string {
	var list []string
	if json.Unmarshal(v, &list) == nil {
		return list
	}
	var s string
	if json.Unmarshal(v, &s) == nil && s != "" {
		return []string{s}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
