package contexthelpers

type contextKey string

const requestIDContextKey = contextKey("requestID")
const interviewTypeContextKey = contextKey("interviewType")
const cspNonceContextKey = contextKey("cspNonce")
