package contexthelpers

import (
	"context"
	"net/http"
)

func SetRequestID(r *http.Request, requestID string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, requestIDContextKey, requestID)
	return r.WithContext(ctx)
}

func SetInterviewType(r *http.Request, interviewType string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, interviewTypeContextKey, interviewType)
	return r.WithContext(ctx)
}

func SetCSPNonce(r *http.Request, nonce string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, cspNonceContextKey, nonce)
	return r.WithContext(ctx)
}
