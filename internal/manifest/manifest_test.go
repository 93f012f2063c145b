// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEndpointsFallsBackToDefaults(t *testing.T) {
	ClearCache()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	m := GetEndpoints(context.Background(), srv.URL, Options{})
	assert.Equal(t, Defaults(), m)
}

func TestGetEndpointsUsesPublishedManifestAndCaches(t *testing.T) {
	ClearCache()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, FileName, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":2,"http":{"token_issue":"/v2/login/","logout":"/v2/logout/"}}`))
	}))
	defer srv.Close()

	m := GetEndpoints(context.Background(), srv.URL, Options{})
	assert.Equal(t, "/v2/login/", m.HTTP.Login)
	assert.Equal(t, "/v2/logout/", m.HTTP.Logout)
	assert.Equal(t, Defaults().HTTP.Me, m.HTTP.Me, "missing paths are filled from defaults")

	_ = GetEndpoints(context.Background(), srv.URL, Options{})
	assert.Equal(t, 1, hits)
}

func TestSignatureRequiredWhenKeyConfigured(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	body := []byte(`{"version":3,"http":{"token_issue":"/signed/login/"}}`)
	sum := sha256.Sum256(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, sum[:])
	require.NoError(t, err)

	tests := []struct {
		name      string
		signature string
		wantLogin string
	}{
		{name: "valid signature", signature: base64.StdEncoding.EncodeToString(sig), wantLogin: "/signed/login/"},
		{name: "missing signature", signature: "", wantLogin: Defaults().HTTP.Login},
		{name: "bad signature", signature: base64.StdEncoding.EncodeToString([]byte("nope")), wantLogin: Defaults().HTTP.Login},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ClearCache()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.signature != "" {
					w.Header().Set("X-Manifest-Signature", tt.signature)
				}
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			m := GetEndpoints(context.Background(), srv.URL, Options{PublicKeyPEM: pubPEM})
			assert.Equal(t, tt.wantLogin, m.HTTP.Login)
		})
	}
}
