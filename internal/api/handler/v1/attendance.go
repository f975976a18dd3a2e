package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/service"
)

type AttendanceService interface {
	Check(ctx context.Context, token, scannerName string) (service.CheckResult, error)
	Verify(ctx context.Context, token, method, device, operator string) (domain.Registration, error)
	Unverify(ctx context.Context, token string) (domain.Registration, error)
}

type AttendanceHandler struct {
	svc AttendanceService
}

func NewAttendanceHandler(svc AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		svc: svc,
	}
}

// HandleCheck godoc
//
//	@Summary     Inspects a scanned QR code without changing state
//	@Tags        attendance
//	@Accept      json
//	@Produce     json
//	@Param       request body request.CheckRequest true "check request"
//	@Success     200 {object} response.CheckResponse
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /attendance/check [post]
func (h *AttendanceHandler) HandleCheck(ctx *gin.Context) {
	var req request.CheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.Check(ctx.Request.Context(), req.Token, req.ScannerName)
	if err != nil {
		renderAttendanceErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.CheckResponse{
		Action:       result.Action,
		Registration: result.Registration,
		Room:         result.Room,
		Platoon:      result.Platoon,
	})
}

// HandleVerify godoc
//
//	@Summary     Marks a registration as verified (checked in)
//	@Tags        attendance
//	@Accept      json
//	@Produce     json
//	@Param       request body request.VerifyRequest true "verify request"
//	@Success     200 {object} response.VerifyResponse
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     409 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /attendance/verify [post]
func (h *AttendanceHandler) HandleVerify(ctx *gin.Context) {
	var req request.VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reg, err := h.svc.Verify(ctx.Request.Context(), req.Token, req.Method, req.Device, req.Operator)
	if err != nil {
		renderAttendanceErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.VerifyResponse{
		Message:      "registration verified",
		Registration: reg,
	})
}

// HandleUnverify godoc
//
//	@Summary     Reverts a verified registration back to unverified
//	@Tags        attendance
//	@Accept      json
//	@Produce     json
//	@Param       request body request.UnverifyRequest true "unverify request"
//	@Success     200 {object} response.VerifyResponse
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     409 {object} response.Err
//	@Failure     422 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /attendance/unverify [post]
func (h *AttendanceHandler) HandleUnverify(ctx *gin.Context) {
	var req request.UnverifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reg, err := h.svc.Unverify(ctx.Request.Context(), req.Token)
	if err != nil {
		renderAttendanceErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.VerifyResponse{
		Message:      "registration unverified",
		Registration: reg,
	})
}

func renderAttendanceErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		response.RenderErr(ctx, response.ErrInvalidToken(err))
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.RenderErr(ctx, response.ErrNotFound(err))
	case errors.Is(err, service.ErrAlreadyVerified):
		response.RenderErr(ctx, response.ErrConflict("already_verified", err))
	case errors.Is(err, service.ErrNotVerified):
		response.RenderErr(ctx, response.ErrConflict("not_verified", err))
	case errors.Is(err, service.ErrUnverifyBlocked):
		response.RenderErr(ctx, response.ErrUnprocessable("unverify_blocked", err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
