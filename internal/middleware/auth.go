package middleware

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskwave/backend/api/transport"
	"github.com/taskwave/backend/domain"
	"github.com/taskwave/backend/pkg/token"
)

// BearerAuth validates the Authorization header against the token manager
// and propagates the subject to handlers via X-User-ID. Every validation
// failure collapses to the same 401 response.
func BearerAuth(tokens *token.Manager, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			raw := extractToken(ctx)
			if raw == "" {
				unauthorized(ctx)
				return
			}

			identity, ok := tokens.Validate(raw)
			if !ok {
				logger.Warn("rejected bearer token", zap.String("path", string(ctx.Path())))
				unauthorized(ctx)
				return
			}

			ctx.Request.Header.Set("X-User-ID", identity.UserID)
			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	body, _ := json.Marshal(transport.NewError("unauthorized", string(domain.ErrCodeUnauthorized)))
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
