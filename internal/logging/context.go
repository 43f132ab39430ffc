package logging

import (
	"context"
	"maps"
)

type contextKey string

const fieldsKey contextKey = "compage.logging.fields"

// ContextWithFields merges the provided fields into any fields already carried
// by the context and returns the derived context. Later values win on key
// collisions.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}

	existing, _ := ctx.Value(fieldsKey).(map[string]any)
	merged := make(map[string]any, len(existing)+len(fields))
	maps.Copy(merged, existing)
	maps.Copy(merged, fields)

	return context.WithValue(ctx, fieldsKey, merged)
}

// ContextFields returns a copy of the structured fields carried by ctx, or nil
// when none were attached. Callers may mutate the result freely.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}

	fields, _ := ctx.Value(fieldsKey).(map[string]any)
	if len(fields) == 0 {
		return nil
	}

	return maps.Clone(fields)
}
