package operation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-training/mtd-vat/pkg/core"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

/*
AddRequestAttributes sets attributes on the current trace span, and if no active span,
logs the attributes via slog for observability fallback. Also logs trace/span id for correlation.
*/
func AddRequestAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
		return
	}

	logAttrs := make([]slog.Attr, 0, len(attrs)+3)
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(string(attr.Key), attr.Value.AsInterface()))
	}
	logAttrs = append(logAttrs, slog.Bool("observability.fallback", true))
	sc := span.SpanContext()
	if sc.HasTraceID() {
		logAttrs = append(logAttrs, slog.String("trace_id", sc.TraceID().String()))
	}
	if sc.HasSpanID() {
		logAttrs = append(logAttrs, slog.String("span_id", sc.SpanID().String()))
	}
	core.LoggerFromCtx(ctx).LogAttrs(ctx, slog.LevelInfo, "Tool call attributes", logAttrs...)
}

// ToolHandlerMiddleware records the tool name, status and duration of every
// tool call. Arguments are not recorded since they may carry VAT figures.
func ToolHandlerMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if core.RequestIDFromCtx(ctx) == "" {
				ctx = core.WithRequestID(ctx)
			}
			start := time.Now()
			AddRequestAttributes(ctx, attribute.String("mcp.tool", req.Params.Name))

			res, err := next(ctx, req)
			durationMs := float64(time.Since(start).Microseconds()) / 1000.0

			attrs := []attribute.KeyValue{
				attribute.String("mcp.status", "ok"),
				attribute.Float64("mcp.duration_ms", durationMs),
			}
			if msg := errorMessage(res, err); msg != "" {
				attrs[0] = attribute.String("mcp.status", "error")
				attrs = append(attrs, attribute.String("mcp.error", msg))
			}
			AddRequestAttributes(ctx, attrs...)

			return res, err
		}
	}
}

func errorMessage(res *mcp.CallToolResult, err error) string {
	switch {
	case err != nil:
		return err.Error()
	case res == nil || !res.IsError:
		return ""
	case len(res.Content) == 0:
		return "unknown error with no content"
	}
	if txt, ok := mcp.AsTextContent(res.Content[0]); ok {
		return txt.Text
	}
	return fmt.Sprintf("unknown error with content type %T", res.Content[0])
}
