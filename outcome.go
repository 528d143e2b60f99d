// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package rootspan

// OutcomeKind tells how serving a request concluded.
type OutcomeKind int

const (
	// OutcomePlainSuccess means a response was produced and nothing reported an error.
	OutcomePlainSuccess OutcomeKind = iota

	// OutcomeSuccessWithError means a response was produced, but it represents
	// a failure. E.g. a handler deliberately answered 5xx and attached the
	// cause via EmitError or SendError.
	OutcomeSuccessWithError

	// OutcomeFailure means processing failed before any response was produced.
	OutcomeFailure
)

// Response is what the span layer needs to know about the outgoing response:
// the status code actually written, and the application error embedded into
// it, if any.
type Response struct {
	StatusCode int
	Err        error
}

// Outcome is the result of serving a single request.
// Either a response was produced, possibly with an embedded error, or
// processing failed outright. Construct with SuccessOutcome or FailureOutcome.
type Outcome struct {
	response Response
	err      error
}

// SuccessOutcome makes an outcome for a request that produced a response.
// If resp.Err is set, the outcome is success-with-embedded-error.
func SuccessOutcome(resp Response) Outcome {
	return Outcome{response: resp}
}

// FailureOutcome makes an outcome for a request that failed before a response
// was produced. Parameter err must not be nil: with nothing to classify, a
// nil err degenerates to a plain-success outcome with a zero status code.
// Handler and Wrap never construct that shape.
func FailureOutcome(err error) Outcome {
	return Outcome{err: err}
}

// Kind tells which of the three outcome shapes this is.
func (o Outcome) Kind() OutcomeKind {
	if o.err != nil {
		return OutcomeFailure
	}
	if o.response.Err != nil {
		return OutcomeSuccessWithError
	}
	return OutcomePlainSuccess
}

// Response returns the produced response. Zero value on OutcomeFailure.
func (o Outcome) Response() Response {
	return o.response
}

// Err returns the failure error. Nil unless Kind is OutcomeFailure.
func (o Outcome) Err() error {
	return o.err
}
