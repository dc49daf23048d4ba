package domain

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingInput  = errors.New("missing input")
	ErrDecode        = errors.New("decode error")
	ErrService       = errors.New("service error")
	ErrEmptyResponse = errors.New("empty response")
)

// Error is the uniform failure returned by the mockup pipeline. Kind is one of
// the sentinel errors above and drives the HTTP status; Detail is the
// human-readable message rendered to clients.
type Error struct {
	Kind   error
	Stage  Stage
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("mockup failure")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the error's kind, so errors.Is(err,
// ErrMissingInput) works on wrapped values.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewMissingInput(detail string) *Error {
	return &Error{Kind: ErrMissingInput, Stage: StageValidating, Detail: detail}
}

func NewDecodeError(detail string, err error) *Error {
	return &Error{Kind: ErrDecode, Stage: StageNormalizing, Detail: detail, Err: err}
}

func NewServiceError(detail string, err error) *Error {
	return &Error{Kind: ErrService, Stage: StageGenerating, Detail: detail, Err: err}
}

func NewEmptyResponse(detail string) *Error {
	return &Error{Kind: ErrEmptyResponse, Stage: StageGenerating, Detail: detail}
}

// StatusCode maps a pipeline error onto the HTTP status the web layer returns.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingInput), errors.Is(err, ErrDecode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
