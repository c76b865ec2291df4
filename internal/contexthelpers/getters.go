package contexthelpers

import (
	"context"
)

// RequestID returns the id assigned to the current request or an empty string outside a request.
func RequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDContextKey).(string)
	if !ok {
		return ""
	}

	return requestID
}

func InterviewType(ctx context.Context) string {
	interviewType, ok := ctx.Value(interviewTypeContextKey).(string)
	if !ok {
		return ""
	}

	return interviewType
}

// CSPNonce returns the nonce allowed by the Content-Security-Policy of the current response.
func CSPNonce(ctx context.Context) string {
	nonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return nonce
}
