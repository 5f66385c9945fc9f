package ctxutil

import (
	"context"
	"strings"
)

type ctxKey string

const (
	viewerKey    ctxKey = "viewer"
	requestIDKey ctxKey = "request_id"
)

// Viewer identifies the person acting on an approval request. Reviewers are
// identified by email (from a share-link token or query parameter); there are
// no user accounts in this system.
type Viewer struct {
	Email string
	Name  string
}

// WithViewer stores the viewer identity in the context. The email is
// normalized to lower case.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	return context.WithValue(ctx, viewerKey, v)
}

// ViewerFromCtx extracts the viewer from the context.
// Returns a zero Viewer and false if absent or the email is empty.
func ViewerFromCtx(ctx context.Context) (Viewer, bool) {
	v, ok := ctx.Value(viewerKey).(Viewer)
	if !ok || v.Email == "" {
		return Viewer{}, false
	}
	return v, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
