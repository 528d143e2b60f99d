// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package rootspan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ResponseError describes an error that knows how it maps to an HTTP response.
// Error() is the concise, human-facing message. Details() is the verbose
// diagnostic representation and always contains at least the message.
// StatusCode() is the natural HTTP status of the error, used when no response
// carrying another status was produced.
type ResponseError interface {
	error
	StatusCode() int
	Details() string
}

type statusError struct {
	err            error
	statusCode     int
	problemDetails ProblemDetails
}

// ProblemDetails is a structure defining fields for RFC 7807 error responses.
type ProblemDetails struct {
	Type          string            `json:"type,omitempty"`
	Title         string            `json:"title,omitempty"`
	Detail        string            `json:"detail,omitempty"`
	Instance      string            `json:"instance,omitempty"`
	Status        int               `json:"status,omitempty"`
	InvalidParams map[string]string `json:"invalidParams,omitempty"`
}

// String makes string of ProblemDetails.
func (e ProblemDetails) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// ProblemDetails adds ProblemDetails data to error.
func (e *statusError) ProblemDetails(pd ProblemDetails) error {
	e.problemDetails = pd
	return e
}

// Error returns error string.
func (e statusError) Error() string {
	errStr := ""
	if e.err != nil {
		errStr = e.err.Error()
	}

	if e.problemDetails.Detail == "" {
		return errStr
	}
	if errStr == "" {
		return e.problemDetails.Detail
	}
	return e.problemDetails.Detail + ": " + errStr
}

// StatusCode returns the HTTP status code coupled to the error.
func (e *statusError) StatusCode() int {
	return e.statusCode
}

// Details returns the verbose diagnostic representation of the error:
// the status, the message, the wrapped cause chain and the problem details document.
func (e *statusError) Details() string {
	s := fmt.Sprintf("%d %s", e.statusCode, e.Error())
	for cause := errors.Unwrap(e.err); cause != nil; cause = errors.Unwrap(cause) {
		s += fmt.Sprintf("; caused by %T: %s", cause, cause.Error())
	}
	if pd := e.problemDetails.String(); pd != "{}" {
		s += " " + pd
	}
	return s
}

// Unwrap returns wrapped error.
// https://blog.golang.org/go1.13-errors
func (e *statusError) Unwrap() error {
	return e.err
}

// NewError creates a new error that contains HTTP status code.
// Coupling HTTP status code to error makes function return values clean, and
// lets the span layer resolve a status even when no response was produced.
//
//	if err != nil {return rootspan.NewError(err, http.StatusBadRequest)}
//
// Parameter description is optional, caller may provide extra description, appearing at the beginning of the error string.
//
//	if err != nil {return rootspan.NewError(err, http.StatusBadRequest, "bad data")}
//
// Parameter err may be nil, if there is no error to wrap or original error text is better not to be propagated.
//
//	if err != nil {return rootspan.NewError(nil, http.StatusBadRequest, "bad data")}
func NewError(err error, statusCode int, description ...string) error {
	return &statusError{err: err, statusCode: statusCode, problemDetails: ProblemDetails{Detail: strings.Join(description, " ")}}
}

// NewDetailedError creates a new error with specified problem details JSON structure (RFC 7807).
func NewDetailedError(err error, status int, pd ProblemDetails) error {
	return &statusError{err: err, statusCode: status, problemDetails: pd}
}

// DetailError adds further description to the error. Useful when cascading return values.
// Can be used on any error, though mostly used on errors created by rootspan.NewError() / NewDetailedError().
// E.g. rootspan.DetailError(err, "db query failed")
func DetailError(err error, description string) error {
	return &statusError{err: err, statusCode: GetErrStatusCodeElse(err, 0), problemDetails: ProblemDetails{Detail: description}}
}

// GetErrStatusCode returns the natural status code of the error.
// If err is nil then http.StatusOK returned.
// If no status stored (e.g. a plain error reached the span layer) then http.StatusInternalServerError returned.
func GetErrStatusCode(err error) int {
	status := GetErrStatusCodeElse(err, -1)
	if status <= 0 {
		return http.StatusInternalServerError
	}
	return status
}

// GetErrStatusCodeElse returns the natural status code of the error, if available.
// Else returns the one the caller provided.
// If err is nil then http.StatusOK returned.
func GetErrStatusCodeElse(err error, elseStatusCode int) int {
	if err != nil {
		var e ResponseError
		if errors.As(err, &e) {
			return e.StatusCode()
		}
		return elseStatusCode
	}
	return http.StatusOK
}

// IsConnectError determines if error is due to a failed connection.
// I.e. does not contain HTTP status code, or 502 / 503 / 504.
func IsConnectError(err error) bool {
	status := GetErrStatusCodeElse(err, 502)
	return status >= 502 && status <= 504
}

// ErrorDetails returns the verbose diagnostic representation of any error.
// If the error implements ResponseError, its own Details is used.
// Otherwise a diagnostic is built from the message and the unwrap chain, so
// the result always contains at least the display message.
func ErrorDetails(err error) string {
	var re ResponseError
	if errors.As(err, &re) {
		if d := re.Details(); d != "" {
			return d
		}
	}

	details := fmt.Sprintf("%T: %s", err, err.Error())
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		details += fmt.Sprintf("; caused by %T: %s", cause, cause.Error())
	}
	return details
}
