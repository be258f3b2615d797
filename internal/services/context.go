package services

import "context"

type contextKey string

const (
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
	videoIDKey   contextKey = "video_id"
)

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithVideoID annotates context with the video being processed.
func WithVideoID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, videoIDKey, id)
}

// VideoIDFromContext returns the video identifier if present.
func VideoIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(videoIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
