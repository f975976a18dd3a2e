package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/api/middleware"
	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetCurrentUser godoc
//
//	@Summary     Returns the authenticated admin account
//	@Tags        users
//	@Produce     json
//	@Success     200 {object} domain.User
//	@Failure     401 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /users/me [get]
func (h *UserHandler) HandleGetCurrentUser(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.CtxKeyUserID)
	if userID == 0 {
		response.RenderErr(ctx, response.ErrUnauthorized(errors.New("missing user identity")))
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))
			return
		}

		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}
