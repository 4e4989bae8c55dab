package kit

import "context"

type contextKey string

const (
	TransportKey contextKey = "kit_transport" // "http", "mcp_quic"
	RequestIDKey contextKey = "kit_request_id"
	ServiceIDKey contextKey = "kit_service_id"
)

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "http"
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

// WithServiceID records the social service a caller acts for.
func WithServiceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ServiceIDKey, id)
}
func GetServiceID(ctx context.Context) string {
	v, _ := ctx.Value(ServiceIDKey).(string)
	return v
}
