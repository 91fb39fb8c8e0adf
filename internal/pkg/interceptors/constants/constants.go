package constants

// contextKey is an unexported type for context keys in this package so they
// never collide with keys from other packages that share the string value.
type contextKey string

const (
	HeaderXRequestId = "x-request-id"

	// ContextKeyRequestID is the context key for the request ID.
	ContextKeyRequestID contextKey = HeaderXRequestId
)
