// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodgeportal/cli/internal/manifest"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
	return m
}

// newPortal mounts handlers on the default endpoint layout under /api.
func newPortal(t *testing.T, mount func(r chi.Router)) API {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", mount)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", manifest.Defaults().HTTP, Options{})
}

func TestLoginReturnsTokensAndUser(t *testing.T) {
	api := newPortal(t, func(r chi.Router) {
		r.Post("/authentication/token/", func(w http.ResponseWriter, r *http.Request) {
			body := decodeBody(t, r)
			assert.Equal(t, "hiram", body["username"])
			assert.Equal(t, "s3cret", body["password"])
			_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
			assert.NoError(t, err, "X-Request-ID must be a UUID")
			writeJSON(w, http.StatusOK, map[string]any{
				"access":  "acc-1",
				"refresh": "ref-1",
				"user": map[string]any{
					"id": 7, "username": "hiram", "degree": 3, "is_admin": true,
					"officer_role": map[string]any{"role": "VM", "is_active": true},
				},
			})
		})
	})

	res, err := api.Login(context.Background(), "hiram", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", res.AccessToken)
	assert.Equal(t, "ref-1", res.RefreshToken)
	require.NotNil(t, res.User)
	assert.Equal(t, ID("7"), res.User.ID)
	assert.Equal(t, 3, res.User.Degree)
	assert.Equal(t, []string{"VM"}, res.User.OfficeList())
}

func TestLoginTwoFactorChallenge(t *testing.T) {
	api := newPortal(t, func(r chi.Router) {
		r.Post("/authentication/token/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"requires_2fa": true, "user_id": 42, "detail": "code required"})
		})
	})

	res, err := api.Login(context.Background(), "hiram", "s3cret")
	require.NoError(t, err)
	assert.True(t, res.RequiresTwoFactor)
	assert.Equal(t, ID("42"), res.PendingUserID)
	assert.Empty(t, res.AccessToken)
}

func TestLoginAcceptsAlternateTokenNames(t *testing.T) {
	api := newPortal(t, func(r chi.Router) {
		r.Post("/authentication/token/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"token": "acc-2", "refresh_token": "ref-2"})
		})
	})

	res, err := api.Login(context.Background(), "u", "p")
	require.NoError(t, err)
	assert.Equal(t, "acc-2", res.AccessToken)
	assert.Equal(t, "ref-2", res.RefreshToken)
	assert.Nil(t, res.User)
}

func TestStatusErrorsAreTyped(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     any
		wantKind ErrorKind
		field    string
	}{
		{name: "unauthorized", status: 401, body: map[string]any{"detail": "Invalid credentials."}, wantKind: KindUnauthorized},
		{name: "forbidden", status: 403, body: map[string]any{"detail": "Account disabled."}, wantKind: KindForbidden},
		{name: "field errors", status: 400, body: map[string]any{"password": []string{"too short"}}, wantKind: KindBadRequest, field: "password"},
		{name: "server", status: 502, body: "bad gateway", wantKind: KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newPortal(t, func(r chi.Router) {
				r.Post("/authentication/token/", func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, tt.status, tt.body)
				})
			})

			_, err := api.Login(context.Background(), "u", "p")
			require.Error(t, err)
			gwErr, ok := AsError(err)
			require.True(t, ok, "expected *backend.Error, got %T", err)
			assert.Equal(t, tt.wantKind, gwErr.Kind)
			assert.Equal(t, tt.status, gwErr.Status)
			if tt.field != "" {
				assert.True(t, gwErr.HasField(tt.field))
				assert.Equal(t, "too short", gwErr.FieldMessage(tt.field))
			}
		})
	}
}

func TestTransportErrorKind(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	api := New("http://"+addr+"/api", manifest.Defaults().HTTP, Options{})
	_, err = api.Login(context.Background(), "u", "p")
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.NotNil(t, errors.Unwrap(err))
}

func TestVerifyTwoFactorSendsPendingUserID(t *testing.T) {
	api := newPortal(t, func(r chi.Router) {
		r.Post("/authentication/two-factor/verify/", func(w http.ResponseWriter, r *http.Request) {
			body := decodeBody(t, r)
			assert.Equal(t, "123456", body["code"])
			assert.EqualValues(t, 42, body["user_id"])
			writeJSON(w, http.StatusOK, map[string]any{"access": "acc", "refresh": "ref", "user": map[string]any{"id": 42, "username": "hiram"}})
		})
	})

	res, err := api.VerifyTwoFactor(context.Background(), "123456", ID("42"))
	require.NoError(t, err)
	assert.Equal(t, "acc", res.AccessToken)
}

func TestGetProfileSendsBearer(t *testing.T) {
	api := newPortal(t, func(r chi.Router) {
		r.Get("/authentication/users/me/", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer acc-1" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "no"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"id": "u-1", "username": "hiram", "two_factor_enabled": true, "offices": []string{"SEC", "TES"}})
		})
	})

	u, err := api.GetProfile(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, ID("u-1"), u.ID)
	assert.True(t, u.TwoFactorEnabled)
	assert.Equal(t, []string{"SEC", "TES"}, u.OfficeList())

	_, err = api.GetProfile(context.Background(), "stale")
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestRefreshToken(t *testing.T) {
	api := newPortal(t, func(r chi.Router) {
		r.Post("/authentication/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
			body := decodeBody(t, r)
			if body["refresh"] != "ref-1" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired", "code": "token_not_valid"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"access": "acc-2"})
		})
	})

	access, rotated, err := api.RefreshToken(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "acc-2", access)
	assert.Empty(t, rotated)

	_, _, err = api.RefreshToken(context.Background(), "bogus")
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestLogoutWithoutEndpointIsNoop(t *testing.T) {
	api := newPortal(t, func(r chi.Router) {})
	assert.NoError(t, api.Logout(context.Background(), "acc", "ref"))
}

func TestTwoFactorSetup(t *testing.T) {
	api := newPortal(t, func(r chi.Router) {
		r.Get("/authentication/two-factor/setup/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"secret_key": "JBSWY3DPEHPK3PXP", "qr_code": "data:image/png;base64,AAAA"})
		})
		r.Post("/authentication/two-factor/setup/", func(w http.ResponseWriter, r *http.Request) {
			if decodeBody(t, r)["code"] != "654321" {
				writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid code."})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"detail": "enabled"})
		})
	})

	setup, err := api.SetupTwoFactor(context.Background(), "acc")
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", setup.Secret)

	assert.NoError(t, api.ConfirmTwoFactorSetup(context.Background(), "acc", "654321"))
	err = api.ConfirmTwoFactorSetup(context.Background(), "acc", "000000")
	gwErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid code.", gwErr.Detail)
}

func TestIDUnmarshal(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"x-9","c":null}`), &v))
	assert.Equal(t, ID("12"), v.A)
	assert.Equal(t, ID("x-9"), v.B)
	assert.Equal(t, ID(""), v.C)
}
