// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package rootspan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	assert := assert.New(t)
	err := NewError(errors.New("err"), 400, "what?")
	assert.Equal(400, GetErrStatusCode(err))
	assert.Equal(400, GetErrStatusCodeElse(err, 501))
	assert.Equal("what?: err", err.Error())

	err = DetailError(err, "when?")
	assert.Equal(400, GetErrStatusCode(err))
	assert.Equal("when?: what?: err", err.Error())

	err = errors.Unwrap(err)
	assert.Equal("what?: err", err.Error())
}

func TestNewErrorNoDescription(t *testing.T) {
	assert := assert.New(t)
	err := NewError(errors.New("err"), 400)
	assert.Equal(400, GetErrStatusCode(err))
	assert.Equal("err", err.Error())
}

func TestErrGettersForNonResponseError(t *testing.T) {
	assert := assert.New(t)
	err := errors.New("err")
	assert.Equal(500, GetErrStatusCode(err))
	assert.Equal(501, GetErrStatusCodeElse(err, 501))
	assert.True(IsConnectError(err))
}

func TestErrGettersForNil(t *testing.T) {
	assert := assert.New(t)
	var err error
	assert.Equal(200, GetErrStatusCode(err))
	assert.Equal(200, GetErrStatusCodeElse(err, 501))
	assert.False(IsConnectError(err))
}

func TestErrConnect(t *testing.T) {
	assert := assert.New(t)
	assert.False(IsConnectError(NewError(nil, 400, "")))
	assert.False(IsConnectError(NewError(nil, 500, "")))
	assert.False(IsConnectError(NewError(nil, 511, "")))

	assert.True(IsConnectError(NewError(nil, 502, "")))
	assert.True(IsConnectError(NewError(nil, 503, "")))
	assert.True(IsConnectError(NewError(nil, 504, "")))
}

func TestErrNoBase(t *testing.T) {
	err := NewError(nil, 404, "hello")
	assert.Equal(t, "hello", err.Error())
}

func TestResponseErrorCapability(t *testing.T) {
	assert := assert.New(t)

	var re ResponseError
	assert.True(errors.As(NewError(errors.New("err"), 400, "what?"), &re))
	assert.Equal(400, re.StatusCode())

	// A status-coded error found deeper in a wrap chain still resolves.
	wrapped := fmt.Errorf("outer: %w", NewError(nil, 404, "missing"))
	assert.Equal(404, GetErrStatusCode(wrapped))
}

func TestErrorDetailsSupersetOfMessage(t *testing.T) {
	assert := assert.New(t)

	err := NewError(fmt.Errorf("query: %w", errors.New("io timeout")), 500, "db")
	details := ErrorDetails(err)
	assert.Contains(details, err.Error())
	assert.Contains(details, "caused by")
	assert.Contains(details, "io timeout")

	plain := errors.New("plain")
	details = ErrorDetails(plain)
	assert.Contains(details, "plain")
	assert.Contains(details, "*errors.errorString")
}

func TestErrorDetailsProblemDetails(t *testing.T) {
	assert := assert.New(t)
	err := NewDetailedError(nil, 403, ProblemDetails{Title: "Forbidden", Detail: "no access"})
	details := ErrorDetails(err)
	assert.Contains(details, "no access")
	assert.Contains(details, `"title":"Forbidden"`)
}

func TestProblemDetailsString(t *testing.T) {
	pd := ProblemDetails{Detail: "d", Status: 400, InvalidParams: map[string]string{"id": "not a number"}}
	assert.Equal(t, `{"detail":"d","status":400,"invalidParams":{"id":"not a number"}}`, pd.String())
}
