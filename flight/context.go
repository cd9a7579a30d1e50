package flight

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/metadata"

	"github.com/hugr-lab/filterql/auth"
)

type contextKey int

const metaKey contextKey = iota

// Metadata header keys read from incoming requests.
const (
	// HeaderTraceID carries a distributed trace identifier.
	HeaderTraceID = "filterql-trace-id"
	// HeaderSessionID carries a client session identifier.
	HeaderSessionID = "filterql-client-session-id"
)

// ContextMeta holds request metadata used for log correlation.
type ContextMeta struct {
	TraceID   string
	SessionID string
}

func WithContextMeta(ctx context.Context, meta ContextMeta) context.Context {
	return context.WithValue(ctx, metaKey, &meta)
}

func MetaFromContext(ctx context.Context) *ContextMeta {
	meta, _ := ctx.Value(metaKey).(*ContextMeta)
	return meta
}

// TraceIDFromContext returns the trace ID from context, or empty string if not set.
func TraceIDFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.TraceID
	}
	return ""
}

// EnrichContextMetadata copies the known headers from gRPC metadata into the
// context. An already enriched context is returned unchanged.
func EnrichContextMetadata(ctx context.Context) context.Context {
	if MetaFromContext(ctx) != nil {
		return ctx
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	var meta ContextMeta
	if values := md.Get(HeaderTraceID); len(values) > 0 {
		meta.TraceID = values[0]
	}
	if values := md.Get(HeaderSessionID); len(values) > 0 {
		meta.SessionID = values[0]
	}
	return WithContextMeta(ctx, meta)
}

// requestAttrs returns the log attributes identifying the caller of ctx.
// Empty values are omitted.
func requestAttrs(ctx context.Context) slog.Attr {
	var attrs []any
	if meta := MetaFromContext(ctx); meta != nil {
		if meta.TraceID != "" {
			attrs = append(attrs, slog.String("trace_id", meta.TraceID))
		}
		if meta.SessionID != "" {
			attrs = append(attrs, slog.String("session_id", meta.SessionID))
		}
	}
	if identity := auth.IdentityFromContext(ctx); identity != "" {
		attrs = append(attrs, slog.String("identity", identity))
	}
	return slog.Group("request", attrs...)
}
