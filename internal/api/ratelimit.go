package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// rateLimitByIP rejects an operation with 429 once the client IP has used
// up its bucket. RemoteAddr is already rewritten by middleware.RealIP.
func (s *Server) rateLimitByIP(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.RemoteAddr())
	if !s.signInLimiter.Allow(key) {
		s.logger.Warn("rate limit exceeded", "ip", key, "path", ctx.URL().Path)
		ctx.SetHeader("Retry-After", "60")
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}
	next(ctx)
}

func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
