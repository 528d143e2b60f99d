// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package tracer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestEnsureScheme(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("http://localhost:4317", ensureScheme("localhost:4317"))
	assert.Equal("grpc://collector:4317", ensureScheme("grpc://collector:4317"))
	assert.Equal("https://collector", ensureScheme("https://collector"))
}

func TestSetupValidation(t *testing.T) {
	assert := assert.New(t)

	assert.Error(Setup(Config{}))

	bad := 1.5
	assert.Error(Setup(Config{Endpoint: "localhost:4317", SampleRatio: &bad}))

	negative := -0.1
	assert.Error(Setup(Config{Endpoint: "localhost:4317", SampleRatio: &negative}))
}

func TestSetup(t *testing.T) {
	assert := assert.New(t)
	defer SetProvider(false, nil)

	ratio := 0.5
	err := Setup(Config{Endpoint: "localhost:4317", ServiceName: "test", SampleRatio: &ratio})
	assert.NoError(err) // exporter connects lazily, no collector needed here
	assert.True(Enabled)
}

func TestSetProvider(t *testing.T) {
	assert := assert.New(t)

	SetProvider(true, sdktrace.NewTracerProvider())
	assert.True(Enabled)

	SetProvider(false, nil)
	assert.False(Enabled)
}

func TestNewTransport(t *testing.T) {
	assert := assert.New(t)
	assert.NotNil(NewTransport(nil))
	assert.NotNil(NewTransport(http.DefaultTransport))
}
