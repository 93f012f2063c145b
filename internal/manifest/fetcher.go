// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FileName is the manifest document served under the API base URL.
const FileName = "/client-manifest.json"

// fetchFromServer retrieves the manifest from baseURL. When publicKeyPEM is set the
// X-Manifest-Signature header is mandatory and verified.
func fetchFromServer(ctx context.Context, client *http.Client, baseURL, publicKeyPEM string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+FileName, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "lodge-cli/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if publicKeyPEM != "" {
		sig := resp.Header.Get("X-Manifest-Signature")
		if sig == "" {
			return nil, fmt.Errorf("manifest is not signed")
		}
		if err := verifySignature(body, sig, publicKeyPEM); err != nil {
			return nil, fmt.Errorf("signature verification failed: %w", err)
		}
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parse manifest JSON: %w", err)
	}
	if m.Version == 0 {
		return nil, fmt.Errorf("invalid manifest: missing version field")
	}
	return m.withDefaults(), nil
}

// verifySignature validates the RSA-SHA256 signature of the manifest body.
func verifySignature(body []byte, signatureB64, publicKeyPEM string) error {
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return fmt.Errorf("failed to parse PEM block")
	}
	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}
	rsaPubKey, ok := pubKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("not an RSA public key")
	}

	hash := sha256.Sum256(body)
	if err := rsa.VerifyPKCS1v15(rsaPubKey, crypto.SHA256, hash[:], sig); err != nil {
		return fmt.Errorf("signature mismatch: %w", err)
	}
	return nil
}

// defaultClient is used when Options.Client is nil.
var defaultClient = &http.Client{Timeout: 5 * time.Second}
