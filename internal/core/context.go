package core

import "context"

type contextKey string

const ctxKeyRequester contextKey = "requester"

// Requester identifies who triggered an import or a media update.
type Requester struct {
	Via       string // "http" or "cli"
	IP        string
	UserAgent string
}

// WithRequester attaches r to ctx so service logs can name the caller.
func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, ctxKeyRequester, r)
}

// RequesterFromContext extracts the requester, if any.
func RequesterFromContext(ctx context.Context) (Requester, bool) {
	r, ok := ctx.Value(ctxKeyRequester).(Requester)
	return r, ok
}

// requesterFields returns slog key/value pairs describing the requester.
func requesterFields(ctx context.Context) []any {
	r, ok := RequesterFromContext(ctx)
	if !ok {
		return nil
	}
	fields := []any{"via", r.Via}
	if r.IP != "" {
		fields = append(fields, "ip", r.IP)
	}
	if r.UserAgent != "" {
		fields = append(fields, "user_agent", r.UserAgent)
	}
	return fields
}
