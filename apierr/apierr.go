// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apierr defines the error taxonomy shared by every service client
// and the text rendering used by the tool formatters. Clients return
// *apierr.Error values; formatters translate them with LLMMessage so an
// agent caller always receives text, never a raised fault.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindNotFound       Kind = "not_found"
	KindRateLimit      Kind = "rate_limit"
	KindUpstream       Kind = "upstream"
	KindNetwork        Kind = "network"
)

// Error is a classified failure from a service client. Status holds the
// upstream HTTP status when one was received, zero otherwise.
type Error struct {
	Kind    Kind
	Service string
	Status  int
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Detail
	if e.Service != "" {
		msg = e.Service + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, service, detail string) *Error {
	return &Error{Kind: kind, Service: service, Detail: detail}
}

// Wrap returns an error of the given kind with an underlying cause.
func Wrap(kind Kind, service, detail string, err error) *Error {
	return &Error{Kind: kind, Service: service, Detail: detail, Err: err}
}

// Configuration returns a configuration error naming the missing settings.
func Configuration(service string, missing ...string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Service: service,
		Detail:  "missing required settings: " + strings.Join(missing, ", "),
	}
}

// Validation returns a validation error for a rejected input parameter.
func Validation(service, detail string) *Error {
	return &Error{Kind: KindValidation, Service: service, Detail: detail}
}

// FromStatus maps a non-2xx upstream status to an error kind: 401 and 403
// become authentication errors, 404 not-found, 429 rate-limit, and
// everything else an upstream error.
func FromStatus(service string, status int) *Error {
	kind := KindUpstream
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuthentication
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusTooManyRequests:
		kind = KindRateLimit
	}
	return &Error{
		Kind:    kind,
		Service: service,
		Status:  status,
		Detail:  fmt.Sprintf("upstream returned HTTP %d", status),
	}
}

// KindOf returns the kind of err, or KindUpstream when err is not a
// classified error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUpstream
}

// LLMMessage renders err as a single human-readable line naming the error
// kind and, where available, the upstream status. Tool formatters return
// this text instead of propagating the error.
func LLMMessage(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return fmt.Sprintf("An unexpected error occurred (%v). Please try rephrasing your request.", err)
	}

	status := ""
	if ae.Status != 0 {
		status = fmt.Sprintf(" (HTTP %d)", ae.Status)
	}

	switch ae.Kind {
	case KindConfiguration:
		return fmt.Sprintf("Configuration error: %s. Please check your environment variables or .env file.", ae.Detail)
	case KindValidation:
		return fmt.Sprintf("Invalid input: %s. Please check your parameters and try again.", ae.Detail)
	case KindAuthentication:
		return fmt.Sprintf("Authentication failed%s. Please check your API credentials.", status)
	case KindNotFound:
		return fmt.Sprintf("Not found%s: the requested resource does not exist. Please check your search terms and try again.", status)
	case KindRateLimit:
		return fmt.Sprintf("Rate limit exceeded%s. Please try again in a few moments.", status)
	case KindNetwork:
		svc := ae.Service
		if svc == "" {
			svc = "the service"
		}
		return fmt.Sprintf("Network error: could not connect to %s. Please try again.", svc)
	default:
		if ae.Status >= 500 {
			return fmt.Sprintf("The service is temporarily unavailable%s. Please try again later.", status)
		}
		return fmt.Sprintf("An error occurred while contacting the service%s. Please try again.", status)
	}
}
