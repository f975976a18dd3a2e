package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/pkg/jwthelper"
	"github.com/vietanh2810/campmeet-api/internal/service"
)

type AuthService interface {
	Signup(ctx context.Context, user domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
}

type AuthHandler struct {
	svc        AuthService
	signingKey string
}

func NewAuthHandler(svc AuthService, signingKey string) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		signingKey: signingKey,
	}
}

// HandleSignup godoc
//
//	@Summary     Creates an admin account
//	@Tags        auth
//	@Accept      json
//	@Produce     json
//	@Param       request body request.SignupRequest true "signup request"
//	@Success     201 {object} response.SignupResponse
//	@Failure     400 {object} response.Err
//	@Failure     409 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Router      /auth/signup [post]
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.User{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserEmailExists):
			response.RenderErr(ctx, response.ErrConflict("email_exists", err))
		case errors.Is(err, service.ErrInvalidRole):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, response.SignupResponse{User: user})
}

// HandleLogin godoc
//
//	@Summary     Logs an admin account in and issues a JWT
//	@Tags        auth
//	@Accept      json
//	@Produce     json
//	@Param       request body request.LoginRequest true "login request"
//	@Success     200 {object} response.LoginResponse
//	@Failure     400 {object} response.Err
//	@Failure     401 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Router      /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	var req request.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrWrongPassword):
			response.RenderErr(ctx, response.ErrUnauthorized(errors.New("incorrect email or password")))
		default:
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	token, err := jwthelper.GenerateToken(h.signingKey, user)
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}
