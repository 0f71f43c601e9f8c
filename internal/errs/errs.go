// Package errs defines the error taxonomy raised and surfaced by the
// template, quoting, schema, and command layers.
package errs

import "fmt"

// Kind classifies a failure into one of the taxonomy buckets.
type Kind string

const (
	KindTemplateSyntax Kind = "template_syntax"
	KindQuoting        Kind = "quoting"
	KindSchema         Kind = "schema"
	KindBackend        Kind = "backend"
)

// Error is a fatal, non-retriable failure from the template/quoting/schema
// layers, tagged with a Kind so callers can distinguish them without string
// matching.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Kind-tagged error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a Kind-tagged error that wraps an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// DBError is the structured backend error surfaced to callers once an
// engine-specific classifier has enriched the raw driver error.
type DBError struct {
	SQLCode int
	SQLState string
	Message  string
	// Code is a normalized tag assigned by the per-errno classifier, e.g.
	// "required", "not_null", "pk", "uk", "fk".
	Code    string
	Col     string
	Table   string
	FKTable string
	FKCol   string
	Err     error
}

func (e *DBError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("backend error (sqlstate=%s, code=%d)", e.SQLState, e.SQLCode)
}

func (e *DBError) Unwrap() error { return e.Err }

// Classifier enriches a raw backend error with engine errno-specific detail.
type Classifier func(err error) *DBError

var classifier Classifier

// RegisterClassifier installs the engine-specific classifier used by Classify.
func RegisterClassifier(c Classifier) { classifier = c }

// Classify converts a raw backend error into a *DBError, using the
// registered classifier when one is installed, or wrapping the raw error
// otherwise.
func Classify(err error) *DBError {
	if err == nil {
		return nil
	}
	if classifier != nil {
		if de := classifier(err); de != nil {
			return de
		}
	}
	return &DBError{Message: err.Error(), Err: err}
}
