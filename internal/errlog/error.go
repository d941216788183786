package errlog

import (
	"errors"
	"fmt"
	"net/http"

	charmlog "github.com/charmbracelet/log"
)

type Code string

const (
	CodeMalformedUpstream Code = "malformed_upstream"
	CodeEmptyResult       Code = "empty_result"
	CodeUpstreamFailure   Code = "upstream_failure"
	CodeInvalidRequest    Code = "invalid_request"
	CodeInternal          Code = "internal"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Error is the caller-visible failure of a suggestion flow.
type Error struct {
	Code     Code           `json:"code"`
	Details  string         `json:"details"`
	Context  map[string]any `json:"context,omitempty"`
	Severity Severity       `json:"severity"`
	Err      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Details)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Details == e.Details
}

// New builds an error with the default severity for code.
func New(code Code, details string) *Error {
	return &Error{Code: code, Details: details, Severity: defaultSeverity(code)}
}

// Wrap is New with a cause.
func Wrap(code Code, details string, err error) *Error {
	e := New(code, details)
	e.Err = err
	return e
}

// With returns a copy carrying an extra context key.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

func defaultSeverity(code Code) Severity {
	switch code {
	case CodeMalformedUpstream:
		return SeverityInfo
	case CodeEmptyResult, CodeInvalidRequest:
		return SeverityWarning
	case CodeUpstreamFailure:
		return SeverityError
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityError
	}
}

// Tag wraps err with code unless it already carries a tag.
func Tag(err error, code Code, details string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(code, details, err)
}

// As extracts the tagged error from err. Untagged errors become CodeInternal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(CodeInternal, "internal error", err)
}

// HTTPStatus maps an error to the status a handler should reply with.
func HTTPStatus(err error) int {
	e := As(err)
	if e == nil {
		return http.StatusOK
	}
	switch e.Code {
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeEmptyResult, CodeMalformedUpstream:
		return http.StatusUnprocessableEntity
	case CodeUpstreamFailure:
		return http.StatusBadGateway
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Level maps a severity to a log level.
func Level(s Severity) charmlog.Level {
	switch s {
	case SeverityInfo:
		return charmlog.InfoLevel
	case SeverityWarning:
		return charmlog.WarnLevel
	case SeverityError:
		return charmlog.ErrorLevel
	case SeverityCritical:
		return charmlog.ErrorLevel
	default:
		return charmlog.ErrorLevel
	}
}
