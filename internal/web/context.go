package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/storyimport/internal/core"
)

// WithRequestMetadata records the caller's IP and User-Agent so service
// logs can attribute an import or media update.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithRequester(ctx, core.Requester{
		Via:       "http",
		IP:        r.RemoteAddr, // already resolved by TrustedRealIP
		UserAgent: r.UserAgent(),
	})
}
