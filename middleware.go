// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package rootspan

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

func init() {
	logLevel, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = log.InfoLevel
	}
	log.SetLevel(logLevel)
	log.SetFormatter(&log.JSONFormatter{})
}

// SetFormatter lets caller set logrus log formatter.
func SetFormatter(formatter log.Formatter) {
	log.SetFormatter(formatter)
}

var (
	// HealthCheckPath is the path of health checking, such as liveness and readiness probes.
	// Not traced and not logged. By default "/healthz".
	HealthCheckPath = "/healthz"

	// LivenessProbePath is the path of liveness probes.
	// Not traced and not logged. By default "/livez".
	LivenessProbePath = "/livez"

	// ReadinessProbePath is the path of readiness probes.
	// Not traced and not logged. By default "/readyz".
	ReadinessProbePath = "/readyz"
)

type outcomeCtxKey string

const outcomeCtxName = outcomeCtxKey("rootspanOutcome")

// outcomeHolder collects what the request handlers report about the outcome.
// Exclusively owned by a single request; no locking needed.
type outcomeHolder struct {
	embedded error
	failure  error
}

func (h *outcomeHolder) outcome(statusCode int) Outcome {
	if h.failure != nil {
		return FailureOutcome(h.failure)
	}
	return SuccessOutcome(Response{StatusCode: statusCode, Err: h.embedded})
}

func holderFromCtx(ctx context.Context) *outcomeHolder {
	if h, ok := ctx.Value(outcomeCtxName).(*outcomeHolder); ok {
		return h
	}
	return nil
}

// EmitError associates err with the response being produced by the handler.
// The root span then records the error classification, keeping the status
// code the handler actually wrote. Call it when answering a request with a
// deliberate error response. No-op outside a Handler-wrapped request.
func EmitError(ctx context.Context, err error) {
	if h := holderFromCtx(ctx); h != nil && err != nil {
		h.embedded = err
	}
}

func markFailure(ctx context.Context, err error) {
	if h := holderFromCtx(ctx); h != nil && err != nil {
		h.failure = err
	}
}

// spanWriter captures the status code written to the response.
type spanWriter struct {
	writer     http.ResponseWriter
	statusCode *int
}

// Header returns the header map to be written.
func (w spanWriter) Header() http.Header {
	return w.writer.Header()
}

// Write writes supplied bytes to HTTP response.
func (w spanWriter) Write(b []byte) (int, error) {
	return w.writer.Write(b)
}

// WriteHeader sends HTTP status code.
func (w spanWriter) WriteHeader(statusCode int) {
	*w.statusCode = statusCode
	w.writer.WriteHeader(statusCode)
}

type spanHandler struct {
	next    http.Handler
	builder SpanBuilder
}

// ServeHTTP serves the request under a root span.
func (s spanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == LivenessProbePath || r.URL.Path == HealthCheckPath || r.URL.Path == ReadinessProbePath {
		s.next.ServeHTTP(w, r)
		return
	}

	span := s.builder.OnRequestStart(r)
	defer span.End() // A request cancelled mid-flight closes its span without terminal attributes.

	holder := &outcomeHolder{}
	ctx := trace.ContextWithSpan(r.Context(), span)
	r = r.WithContext(context.WithValue(ctx, outcomeCtxName, holder))

	traceStr := span.SpanContext().TraceID().String()
	log.Debugf("[%s] Recv req: %s %s", traceStr, r.Method, r.URL.Path)

	var statusCode int
	s.next.ServeHTTP(spanWriter{writer: w, statusCode: &statusCode}, r)

	if statusCode == 0 {
		statusCode = http.StatusOK // net/http sends 200 when the handler set nothing.
	}
	s.builder.OnRequestEnd(span, holder.outcome(statusCode))
	log.Debugf("[%s] Sent rsp: %d", traceStr, statusCode)
}

// Handler wraps h so that every request is served under a root span built by b.
// The span is started before dispatch, stored in the request context, closed
// when the request was served. Terminal attributes are recorded by
// b.OnRequestEnd from the outcome of processing. If b is nil,
// DefaultSpanBuilder is used.
func Handler(h http.Handler, b SpanBuilder) http.Handler {
	if b == nil {
		b = DefaultSpanBuilder{}
	}
	return spanHandler{next: h, builder: b}
}

// Middleware returns Handler in the form gorilla/mux Router.Use expects.
// E.g. r.Use(rootspan.Middleware(nil))
func Middleware(b SpanBuilder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return Handler(next, b)
	}
}
