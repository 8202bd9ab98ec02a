// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly error handling for calls to the
// DeployR server.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"dataio/cli/internal/deployr"
)

// Category classifies a failed server call for display.
type Category int

const (
	// NotNetwork means the error did not come from talking to the server.
	NotNetwork Category = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
	Unauthorized
	ServerError
	CallRejected
)

// Classify inspects err and reports which kind of server failure it is.
func Classify(err error) Category {
	if err == nil {
		return NotNetwork
	}
	var ce *deployr.CallError
	if errors.As(err, &ce) {
		switch {
		case deployr.IsUnauthorized(err):
			return Unauthorized
		case ce.HTTPStatus >= 500:
			return ServerError
		default:
			return CallRejected
		}
	}
	switch {
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ConnectionRefused
	}
	return NotNetwork
}

// FormatNetworkError prints a friendly explanation of a failed server call
// while performing action against endpoint and returns err wrapped.
func FormatNetworkError(err error, action, endpoint string) error {
	if err == nil {
		return nil
	}
	host := ExtractHostFromURL(endpoint)
	switch Classify(err) {
	case Timeout:
		showTimeoutError(action)
	case DNS:
		showDNSError(action, host)
	case ConnectionRefused:
		showConnectionRefusedError(action, host)
	case TLS:
		showSSLError(action)
	case Unauthorized:
		showUnauthorizedError(action)
	case ServerError:
		showServerError(action, host)
	case CallRejected:
		showCallRejected(action, err)
	default:
		return err
	}
	return fmt.Errorf("server error: %w", err)
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func showTimeoutError(action string) {
	pterm.Printf("⏱️  Connection timeout while %s\n", action)
	pterm.Println()
	pterm.Println("The DeployR server took too long to respond. This could mean:")
	pterm.Println("  • The R script is still running on a busy grid")
	pterm.Println("  • Network firewall is blocking the connection")
	pterm.Println()
}

func showDNSError(action, host string) {
	pterm.Printf("🌐 Cannot resolve server address while %s\n", action)
	pterm.Println()
	pterm.Printf("Unable to look up %s. Please check the --endpoint flag, DEPLOYR_ENDPOINT\n", host)
	pterm.Println("and the endpoint in your config file.")
	pterm.Println()
}

func showConnectionRefusedError(action, host string) {
	pterm.Printf("🚫 Connection refused while %s\n", action)
	pterm.Println()
	pterm.Printf("Nothing is accepting connections at %s. Check that the DeployR\n", host)
	pterm.Println("server is running and that the port in the endpoint is right.")
	pterm.Println()
}

func showSSLError(action string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", action)
	pterm.Println()
	pterm.Println("Cannot establish a secure HTTPS connection. Check the server")
	pterm.Println("certificate, proxy settings and your system clock.")
	pterm.Println()
}

func showUnauthorizedError(action string) {
	pterm.Printf("🔑 Access denied while %s\n", action)
	pterm.Println()
	pterm.Println("The server rejected the credentials. Run 'dataio login' again or")
	pterm.Println("set DEPLOYR_USERNAME and DEPLOYR_PASSWORD.")
	pterm.Println()
}

func showServerError(action, host string) {
	pterm.Printf("⚠️  Server error while %s\n", action)
	pterm.Println()
	pterm.Printf("The DeployR server at %s encountered an internal error.\n", host)
	pterm.Println("Check the server logs and try again.")
	pterm.Println()
}

func showCallRejected(action string, err error) {
	pterm.Printf("❌ The server refused the request while %s\n", action)
	pterm.Println()
	msg := err.Error()
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	pterm.Println("  " + msg)
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
