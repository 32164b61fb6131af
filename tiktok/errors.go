package tiktok

import (
	"fmt"
	"strings"
)

// CapabilityError is returned when a post request asks for something the
// creator account is not currently allowed to do. Callers can recover by
// switching to PublishCoercing.
type CapabilityError struct {
	Violations []string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("post request violates creator capabilities: %s", strings.Join(e.Violations, "; "))
}

// SessionError is returned when the remote service rejects session creation
// or hands back a session that breaks its own contract. Code, Message and
// LogID come verbatim from the API response so they can be quoted to TikTok
// support.
type SessionError struct {
	Stage   string
	Code    string
	Message string
	LogID   string
}

func (e *SessionError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s (code: %s, log: %s)", e.Stage, e.Message, e.Code, e.LogID)
}

// UploadError is returned when the byte transfer to the upload URL fails.
type UploadError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media upload failed: %v", e.Err)
	}
	return fmt.Sprintf("media upload failed: status %d: %s", e.StatusCode, e.Body)
}

func (e *UploadError) Unwrap() error { return e.Err }

// TransportError is an HTTP-level failure with no semantic interpretation.
// Every caller of the transport checks for it before attempting to parse a
// response body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is returned when a response body does not match the expected
// schema.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError captures problems with a post request that are detectable
// before any remote call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid post request: %s", e.Reason)
}
