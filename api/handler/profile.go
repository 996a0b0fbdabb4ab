package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskwave/backend/api/transport"
	"github.com/taskwave/backend/pkg/httpcontext"
	userUC "github.com/taskwave/backend/usecase/user"
)

type ProfileHandler struct {
	baseHandler
	uc *userUC.UseCase
}

func NewProfileHandler(uc *userUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// GetProfile returns the authenticated user's stored profile.
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Profile(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewUserResponse(user), "profile retrieved")
}
