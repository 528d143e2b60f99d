// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package tracer

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Enabled tells if span exporting was activated.
// If OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT is set, then exporting is activated automatically.
// You may set OTEL_TRACES_SAMPLER and OTEL_TRACES_SAMPLER_ARG to set the sampling type and fraction.
// You may fine-tune batch exporting parameters with OTEL_BSP_* environment variables.
// See also
//   - https://opentelemetry.io/docs/specs/otel/protocol/exporter/
//   - https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/
var Enabled = false

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	target := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if target == "" {
		target = os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
	}
	if target == "" {
		return
	}

	if err := Setup(Config{Endpoint: target}); err != nil {
		panic(err)
	}
}

// Config describes where and how to export spans.
type Config struct {
	// Endpoint is the OTLP gRPC collector target address.
	// Port is 4317, unless defined otherwise, e.g. "http://localhost:4317".
	Endpoint string `validate:"required"`

	// ServiceName names this service in exported spans.
	// Defaults to the name of the executable.
	ServiceName string

	// SampleRatio tells the fraction of spans to report, unless the parent is sampled.
	//   - Zero means no sampling.
	//   - 1 means sampling all the spans.
	//   - Else the sampling fraction, e.g. 0.01 for 1%.
	//
	// If nil, sampling is left to the OTEL_TRACES_SAMPLER(_ARG) environment variables.
	SampleRatio *float64 `validate:"omitempty,gte=0,lte=1"`
}

func ensureScheme(target string) string {
	if strings.Contains(target, "://") {
		return target
	}

	// Add something. The exact scheme (grpc, https, http or even dns) is not important, it seems.
	return "http://" + target
}

// Setup activates span export to the OTLP gRPC collector defined by cfg,
// and installs the tracer provider and propagators globally.
func Setup(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := cfg.ServiceName
	if name == "" {
		name = filepath.Base(os.Args[0])
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(name)))
	if err != nil {
		return err
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(ensureScheme(cfg.Endpoint)))
	if err != nil {
		return err
	}

	var sampler sdktrace.Sampler = nil
	if cfg.SampleRatio != nil {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(*cfg.SampleRatio))
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler), // may be nil, using env vars OTEL_TRACES_SAMPLER(_ARG) instead.
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
	)

	SetProvider(true, tracerProvider)
	return nil
}

// SetProvider enables/disables span exporting.
// Tracer provider can be set with the exporter and collector endpoint you need;
// if nil, a provider without an exporter is installed.
// Incoming requests are accepted with W3C traceparent as well as B3 headers;
// outgoing propagation uses all of them.
func SetProvider(enabled bool, tp *sdktrace.TracerProvider) {
	Enabled = enabled

	if enabled {
		if tp == nil {
			tp = sdktrace.NewTracerProvider()
		}
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, b3.New(), b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader))))
	} else {
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample())))
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	}
}

// NewTransport wraps rt so that requests sent while serving a traced request
// create client sub-spans and propagate the trace context downstream.
// If rt is nil, http.DefaultTransport is wrapped.
func NewTransport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return otelhttp.NewTransport(rt)
}
