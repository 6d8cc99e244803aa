package logging

import (
	"context"

	"go.uber.org/zap"
)

type runCtxKey struct{}
type documentCtxKey struct{}

// WithRunID tags ctx with the identifier of one question run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runCtxKey{}, id)
}

// RunIDFromContext returns the run identifier, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runCtxKey{}).(string)
	return id
}

// WithDocument tags ctx with the document being processed.
func WithDocument(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, documentCtxKey{}, name)
}

// DocumentFromContext returns the document name, or "".
func DocumentFromContext(ctx context.Context) string {
	name, _ := ctx.Value(documentCtxKey{}).(string)
	return name
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}

	var fields []zap.Field
	if id := RunIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("run_id", id))
	}
	if name := DocumentFromContext(ctx); name != "" {
		fields = append(fields, zap.String("document", name))
	}
	return fields
}
