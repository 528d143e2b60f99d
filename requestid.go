// Copyright 2026 Nokia
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package rootspan

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the correlation id of the request.
var RequestIDHeader = "X-Request-Id"

type requestIDCtxKey string

const requestIDCtxName = requestIDCtxKey("rootspanRequestID")

// RequestID returns the correlation id of the request, or "" if the request
// id middleware did not run.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDCtxName).(string); ok {
		return id
	}
	return ""
}

// RequestIDHandler wraps h so that every request carries a correlation id.
// The id received in RequestIDHeader is kept; a random one is generated
// otherwise. The id is echoed on the response and made available via
// RequestID, where the root span picks it up. Wrap outside Handler, so the id
// is set before the span starts.
func RequestIDHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDCtxName, id))
		h.ServeHTTP(w, r)
	})
}
