// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package rootspan

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	contentTypeHeader          = "Content-Type"
	acceptHeader               = "Accept"
	contentTypeApplicationJSON = "application/json"
	contentTypeProblemJSON     = "application/problem+json"
	contentTypeApplicationAny  = "application/*"
	contentTypeAny             = "*/*"
)

func baseContentType(ct string) string {
	base, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

func problemContentType(r *http.Request) string {
	ct := contentTypeApplicationJSON
	accepts := r.Header.Values(acceptHeader)
	for i := range accepts {
		baseCT := baseContentType(accepts[i])
		if baseCT == contentTypeProblemJSON || baseCT == contentTypeApplicationAny || baseCT == contentTypeAny {
			ct = contentTypeProblemJSON
			break
		}
	}
	return ct
}

// SendProblemResponse sends response with problem text, and extends it to problem+json format if it is a plain string.
func SendProblemResponse(w http.ResponseWriter, r *http.Request, statusCode int, problem string) (err error) {
	if problem == "" {
		w.WriteHeader(statusCode)
		return nil
	}

	if problem[0] != '{' {
		problem = `{"detail":"` + strings.ReplaceAll(problem, `"`, "'") + `"}`
	}

	w.Header().Set(contentTypeHeader, problemContentType(r))
	w.WriteHeader(statusCode)
	_, err = w.Write([]byte(problem))
	return
}

// SendProblemDetails sends an error response with detailed problem description JSON body, if available. See RFC 7807.
// Status code is the error's natural one, see GetErrStatusCode.
func SendProblemDetails(w http.ResponseWriter, r *http.Request, err error) error {
	if err, ok := err.(*statusError); ok {
		// Work on a copy: the error may still be read by the span layer,
		// which would see the appended cause twice.
		pd := err.problemDetails
		// check in case it is somehow already filled with JSON text...
		if pd.Detail != "" && pd.Detail[0] != '{' {
			if err.err != nil {
				if embeddedStr := err.err.Error(); embeddedStr != "" {
					pd.Detail += ": " + embeddedStr
				}
			}
			return SendProblemResponse(w, r, GetErrStatusCode(err), pd.String())
		}
	}
	return SendProblemResponse(w, r, GetErrStatusCode(err), err.Error())
}

// SendError answers the request with a problem response generated from err
// and associates err with that response, making the root span record the
// error classification alongside the status code sent.
// Use when the error response is a deliberate, completed answer.
func SendError(w http.ResponseWriter, r *http.Request, err error) error {
	EmitError(r.Context(), err)
	if errStr := err.Error(); errStr != "" {
		log.Error(errStr)
	}
	return SendProblemDetails(w, r, err)
}

// HandlerFunc is a request handler that may return an error instead of
// writing a failure response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap turns f into an http.HandlerFunc.
// A returned error means f produced no response: the request is marked failed
// for the root span, which then records the error's natural status code, and
// the client is answered with a problem response at that same code.
func Wrap(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			markFailure(r.Context(), err)
			if errStr := err.Error(); errStr != "" {
				log.Error(errStr)
			}
			_ = SendProblemDetails(w, r, err)
		}
	}
}
