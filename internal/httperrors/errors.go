// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors classifies transport failures of portal requests and turns them into
// user-friendly messages. The gateway uses Classify/Message to build connection errors;
// the command layer uses Present to print troubleshooting hints.
package httperrors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Cause is the category of a transport failure.
type Cause int

const (
	CauseGeneric Cause = iota
	CauseTimeout
	CauseDNS
	CauseRefused
	CauseTLS
	CauseCanceled
)

func (c Cause) String() string {
	switch c {
	case CauseTimeout:
		return "timeout"
	case CauseDNS:
		return "dns"
	case CauseRefused:
		return "connection_refused"
	case CauseTLS:
		return "tls"
	case CauseCanceled:
		return "canceled"
	default:
		return "network"
	}
}

// Classify inspects err and reports what kind of transport failure it is.
func Classify(err error) Cause {
	switch {
	case err == nil:
		return CauseGeneric
	case errors.Is(err, context.Canceled):
		return CauseCanceled
	case isTimeoutError(err):
		return CauseTimeout
	case isDNSError(err):
		return CauseDNS
	case isConnectionRefusedError(err):
		return CauseRefused
	case isSSLError(err):
		return CauseTLS
	default:
		return CauseGeneric
	}
}

// Message returns a short, retry-suggesting message for a transport failure.
func Message(c Cause) string {
	switch c {
	case CauseTimeout:
		return "The portal took too long to respond. Please try again in a few moments."
	case CauseDNS:
		return "Cannot resolve the portal address. Check your internet connection and try again."
	case CauseRefused:
		return "The portal is not accepting connections right now. Please try again later."
	case CauseTLS:
		return "A secure connection to the portal could not be established. Check your system clock and proxy settings, then try again."
	case CauseCanceled:
		return "The request was canceled. Please try again."
	default:
		return "Cannot connect to the portal. Check your connection and try again."
	}
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// Present prints a troubleshooting block for a transport failure that happened while
// performing the described action (for example "signing in").
func Present(err error, action string) {
	if err == nil {
		return
	}

	switch Classify(err) {
	case CauseTimeout:
		pterm.Warning.Printf("Connection timeout while %s\n", action)
		pterm.Println("  • Slow internet connection")
		pterm.Println("  • Portal is under heavy load")
		pterm.Println("  • A firewall is blocking the connection")
	case CauseDNS:
		pterm.Warning.Printf("Cannot resolve the portal address while %s\n", action)
		pterm.Println("  • Check that your internet connection is working")
		pterm.Println("  • Check the api_base_url setting (lodge config)")
	case CauseRefused:
		pterm.Warning.Printf("Connection refused while %s\n", action)
		pterm.Println("  • The portal may be temporarily down")
		pterm.Println("  • Wrong server address or port")
	case CauseTLS:
		pterm.Warning.Printf("Secure connection failed while %s\n", action)
		pterm.Println("  • Check your system date and time")
		pterm.Println("  • Verify network proxy settings")
	case CauseCanceled:
		pterm.Warning.Printf("Canceled while %s\n", action)
	default:
		pterm.Warning.Printf("Cannot connect to the portal while %s\n", action)
		pterm.Println("  • Check your internet connection")
		pterm.Println("  • Check firewall settings that might block HTTPS requests")
	}
	pterm.Println()
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
