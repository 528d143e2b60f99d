// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package rootspan

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/nokia/rootspan"

// Span attribute names recorded by DefaultSpanBuilder.
// These are a stable contract towards consumers of the exported spans.
const (
	AttrMethod           = "method"
	AttrEndpoint         = "endpoint"
	AttrClientIP         = "client_ip"
	AttrStatus           = "status"
	AttrRequestID        = "request_id"
	AttrExceptionMessage = "exception.message"
	AttrExceptionDetails = "exception.details"
)

// SpanBuilder customises the root span attached by Handler to incoming requests.
//
// OnRequestStart is called before the request is dispatched and must return a
// new span. It must not fail: if the tracing subsystem is disabled, a no-op
// span is returned. Tracing must never fail the request.
//
// OnRequestEnd is called once the request was served, with the same span and
// the outcome of processing. It records terminal attributes on the span; the
// span is ended by the caller afterwards.
//
// Exactly one start and one end call per request, in that order, on the same
// span. That is a precondition on the host pipeline, not checked here.
// Implementations must be stateless; they are shared by concurrent requests.
type SpanBuilder interface {
	OnRequestStart(r *http.Request) trace.Span
	OnRequestEnd(span trace.Span, outcome Outcome)
}

// DefaultSpanBuilder is the SpanBuilder used by Handler unless another one is given.
//
// It captures:
//   - HTTP method (method);
//   - matched route template (endpoint), with path parameters kept as placeholders;
//   - client IP (client_ip);
//   - status code (status);
//   - request id (request_id), if the request id middleware ran;
//   - display (exception.message) and diagnostic (exception.details)
//     representations of the error, if there was an error.
type DefaultSpanBuilder struct{}

// OnRequestStart opens the root span for the request.
// The parent span context, if any, is taken from the incoming trace headers
// via the installed propagator.
func (DefaultSpanBuilder) OnRequestStart(r *http.Request) trace.Span {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	endpoint := Endpoint(r)
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, r.Method),
		attribute.String(AttrEndpoint, endpoint),
		attribute.String(AttrClientIP, clientIP(r)),
	}
	if id := RequestID(r.Context()); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}

	_, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...))
	return span
}

// OnRequestEnd records the terminal attributes of the request on its root span.
func (DefaultSpanBuilder) OnRequestEnd(span trace.Span, outcome Outcome) {
	switch outcome.Kind() {
	case OutcomePlainSuccess:
		span.SetAttributes(attribute.Int(AttrStatus, outcome.Response().StatusCode))
	case OutcomeSuccessWithError:
		// Use the status code already written to the outgoing response.
		// Upstream may have rewritten it to something other than the error's own code.
		resp := outcome.Response()
		recordError(span, resp.StatusCode, resp.Err)
	case OutcomeFailure:
		err := outcome.Err()
		recordError(span, GetErrStatusCode(err), err)
	}
}

// recordError classifies err into span attributes.
// Display and diagnostic strings are fully materialized before recording:
// the span may hold on to attribute values past the lifetime of the error.
func recordError(span trace.Span, statusCode int, err error) {
	display := err.Error()
	details := ErrorDetails(err)
	span.SetAttributes(
		attribute.String(AttrExceptionMessage, display),
		attribute.String(AttrExceptionDetails, details),
		attribute.Int(AttrStatus, statusCode),
	)
}

// Endpoint returns the matched route template of the request, with path
// parameters kept as placeholders, e.g. "/users/{id}". Templates keep the
// attribute cardinality bounded. Falls back to the raw path when the request
// was not routed through a mux router.
func Endpoint(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return r.URL.Path
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
