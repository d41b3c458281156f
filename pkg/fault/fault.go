// Package fault defines the error taxonomy shared by every layer of the
// library. Adapters map source, transport, and input failures onto a small
// closed set of kinds so that callers can branch on Kind, never on message
// text.
package fault

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure. The set is closed; adapters must map every
// failure onto one of these.
type Kind int

const (
	// Unknown is the zero value and never returned deliberately.
	Unknown Kind = iota

	// InvalidInput marks a caller mistake: malformed ticker, out-of-range
	// frequency window, unrecognized option value.
	InvalidInput

	// NotFound marks a valid-looking query for an object the source does not
	// have (unknown ticker, dataset id, accession number).
	NotFound

	// NotAvailable marks an object that exists but has no such dataset
	// (balance sheet on an index). Distinct from NotFound.
	NotAvailable

	// Transport covers DNS, connect, and TLS failures.
	Transport

	// Parse marks a malformed body that could not be decoded at all.
	Parse

	// SourceSchemaChanged marks a structural assertion failure inside a
	// parser: the source changed underneath and the adapter needs an update.
	SourceSchemaChanged

	// Configuration marks a missing credential, contact identity, or browser
	// binary path.
	Configuration

	// Upstream4xx and Upstream5xx carry through HTTP status classes.
	Upstream4xx
	Upstream5xx

	// Cancelled and Timeout map context cancellation and deadline expiry.
	Cancelled
	Timeout

	// NotImplemented marks document bodies the parser recognizes but does
	// not support (pre-XML legacy filings).
	NotImplemented
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	InvalidInput:        "invalid_input",
	NotFound:            "not_found",
	NotAvailable:        "not_available",
	Transport:           "transport",
	Parse:               "parse",
	SourceSchemaChanged: "source_schema_changed",
	Configuration:       "configuration",
	Upstream4xx:         "upstream_4xx",
	Upstream5xx:         "upstream_5xx",
	Cancelled:           "cancelled",
	Timeout:             "timeout",
	NotImplemented:      "not_implemented",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type returned across the library.
type Error struct {
	Kind   Kind
	Source string // adapter/source name, e.g. "yahoo", "sec"
	Op     string // operation, e.g. "historical_data"
	Msg    string
	Err    error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Source != "" && e.Op != "":
		return fmt.Sprintf("%s %s: %s: %s", e.Source, e.Op, e.Kind, msg)
	case e.Source != "":
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a fault with no wrapped cause.
func New(kind Kind, source, op, msg string) *Error {
	return &Error{Kind: kind, Source: source, Op: op, Msg: msg}
}

// Newf is New with a formatted message.
func Newf(kind Kind, source, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Source: source, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches taxonomy metadata to an underlying error. If err is already
// a *Error its kind is preserved unless kind is non-zero.
func Wrap(kind Kind, source, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) && kind == Unknown {
		kind = fe.Kind
	}
	return &Error{Kind: kind, Source: source, Op: op, Err: err}
}

// KindOf extracts the Kind from an error chain. Context errors map onto
// Cancelled and Timeout; anything else is Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	switch {
	case errors.Is(err, context.Canceled):
		return Cancelled
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	}
	return Unknown
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// Warning is a non-fatal, observable condition carried alongside a result.
// The only producer today is the MSCI start-date clamp.
type Warning struct {
	Code string // e.g. "clamped"
	Msg  string
}

func (w Warning) String() string { return w.Code + ": " + w.Msg }

// WarnClamped builds the warning emitted when a start date is raised to a
// source's epoch floor.
func WarnClamped(msg string) Warning { return Warning{Code: "clamped", Msg: msg} }
