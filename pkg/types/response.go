package types

import "context"

// SuccessEnvelope wraps every successful JSON body under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. RequestID echoes the X-Request-Id of
// the failing call so a client can quote it when reporting a broken quotation.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type requestIDKey struct{}

// WithRequestID stores the request id for response writers further down the chain.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id stored by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
