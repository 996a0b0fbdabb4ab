package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskwave/backend/api/transport"
	"github.com/taskwave/backend/domain"
	"github.com/taskwave/backend/pkg/httpcontext"
	authUC "github.com/taskwave/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// Callback completes the provider authorization-code flow. The provider
// reports its own denials through the error query parameter.
func (h *AuthHandler) Callback(ctx *fasthttp.RequestCtx) {
	if providerErr := string(ctx.QueryArgs().Peek("error")); providerErr != "" {
		desc := string(ctx.QueryArgs().Peek("error_description"))
		h.logger.Warn("provider rejected authorization",
			zap.String("error", providerErr),
			zap.String("description", desc))
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError("authorization rejected by provider", providerErr))
		return
	}

	code := string(ctx.QueryArgs().Peek("code"))
	if code == "" {
		h.respondError(ctx, domain.NewError(domain.ErrCodeInvalid, "missing authorization code"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.HandleCallback(stdCtx, code)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewAuthResponse(result), "authentication successful")
}
