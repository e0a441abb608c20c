package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sebasr/target-manager/internal/validation"
)

// Kind classifies an APIError. The set is closed.
type Kind int

const (
	// KindTransport means no HTTP response was received (status 0).
	KindTransport Kind = iota
	// KindHTTPClient covers 4xx responses (and unexpected 3xx).
	KindHTTPClient
	// KindHTTPServer covers 5xx responses and unreadable success bodies.
	KindHTTPServer
	// KindValidation is raised locally before a request is sent.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTPClient:
		return "http_client"
	case KindHTTPServer:
		return "http_server"
	case KindValidation:
		return "validation"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// User-facing messages.
const (
	MsgUnreachable  = "Unable to reach the server. Check your connection and try again."
	MsgNotFound     = "The requested target was not found."
	MsgInvalidInput = "Invalid input. Please check the form and try again."
	MsgServerError  = "The server encountered an error. Please try again later."
	MsgFixFields    = "Please fix the highlighted fields."
)

// APIError is the single error shape returned by the Store.
type APIError struct {
	Kind       Kind
	Status     int // 0 for transport and validation errors
	StatusText string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s error: %d %s: %s", e.Kind, e.Status, e.StatusText, e.Message)
}

// NewValidationError wraps client-side field errors.
func NewValidationError(errs validation.FieldErrors) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: "validation failed",
		Details: errs.Strings(),
	}
}

// Normalize converts any error into an APIError. It returns nil for nil.
func Normalize(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	}
	return &APIError{Kind: KindTransport, Message: msg}
}

// newHTTPError builds an APIError from a non-2xx response. The body is parsed
// leniently: a plain text or empty body still yields a usable error.
func newHTTPError(status int, body []byte) *APIError {
	e := &APIError{
		Kind:       KindHTTPClient,
		Status:     status,
		StatusText: http.StatusText(status),
	}
	if status >= 500 {
		e.Kind = KindHTTPServer
	}

	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		for _, path := range []string{"details.message", "message", "error"} {
			if v := parsed.Get(path); v.Type == gjson.String && v.Str != "" {
				e.Message = v.Str
				break
			}
		}
		if details := parsed.Get("details"); details.IsObject() {
			details.ForEach(func(key, value gjson.Result) bool {
				if key.Str == "message" {
					return true
				}
				if e.Details == nil {
					e.Details = map[string]string{}
				}
				e.Details[key.Str] = value.String()
				return true
			})
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		e.Message = text
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("Request failed with status %d", status)
	}
	return e
}

// UserMessage maps an error to the text shown to the user.
func UserMessage(err error) string {
	e := Normalize(err)
	if e == nil {
		return ""
	}

	switch {
	case e.Kind == KindValidation:
		return MsgFixFields
	case e.Status == 0:
		return MsgUnreachable
	case e.Status == http.StatusNotFound:
		return MsgNotFound
	case e.Status == http.StatusBadRequest:
		return badRequestMessage(e)
	case e.Status >= 500:
		return MsgServerError
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed with status %d", e.Status)
}

func badRequestMessage(e *APIError) string {
	msg := e.Message
	if msg == "" || msg == fmt.Sprintf("Request failed with status %d", e.Status) {
		msg = MsgInvalidInput
	}
	if len(e.Details) == 0 {
		return msg
	}

	parts := make([]string, 0, len(e.Details))
	for _, key := range detailKeys(e.Details) {
		parts = append(parts, key+": "+e.Details[key])
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

// detailKeys orders known form fields first, in display order, then the rest
// alphabetically.
func detailKeys(details map[string]string) []string {
	rank := func(key string) int {
		for i, f := range validation.Fields {
			if string(f) == key {
				return i
			}
		}
		return len(validation.Fields)
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	e := Normalize(err)
	return e != nil && e.Status == http.StatusNotFound
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	e := Normalize(err)
	return e != nil && e.Kind == KindValidation
}

// IsServer reports whether err is a 5xx response.
func IsServer(err error) bool {
	e := Normalize(err)
	return e != nil && e.Kind == KindHTTPServer
}

// IsTransport reports whether err happened before any response was received.
func IsTransport(err error) bool {
	e := Normalize(err)
	return e != nil && e.Kind == KindTransport
}
