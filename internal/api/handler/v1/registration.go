package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type RegistrationService interface {
	CreateRegistration(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	GetRegistration(ctx context.Context, id uint) (domain.Registration, error)
	ListRegistrations(ctx context.Context, limit, offset int) ([]domain.Registration, error)
	IssueToken(ctx context.Context, id uint) (string, error)
}

type RegistrationHandler struct {
	svc RegistrationService
}

func NewRegistrationHandler(svc RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		svc: svc,
	}
}

// HandleCreateRegistration godoc
//
//	@Summary     Registers a new participant
//	@Tags        registrations
//	@Accept      json
//	@Produce     json
//	@Param       request body request.CreateRegistrationRequest true "registration"
//	@Success     201 {object} domain.Registration
//	@Failure     400 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /registrations [post]
func (h *RegistrationHandler) HandleCreateRegistration(ctx *gin.Context) {
	var req request.CreateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	dob, err := req.ParsedDateOfBirth()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateRegistration(ctx.Request.Context(), domain.Registration{
		FullName:    req.FullName,
		Gender:      domain.Gender(req.Gender),
		DateOfBirth: dob,
		Phone:       req.Phone,
	})
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleListRegistrations godoc
//
//	@Summary     Lists registrations
//	@Tags        registrations
//	@Produce     json
//	@Param       limit  query int false "page size"
//	@Param       offset query int false "page offset"
//	@Success     200 {array} domain.Registration
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /registrations [get]
func (h *RegistrationHandler) HandleListRegistrations(ctx *gin.Context) {
	limit, offset := pagination(ctx)

	regs, err := h.svc.ListRegistrations(ctx.Request.Context(), limit, offset)
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, regs)
}

// HandleGetRegistration godoc
//
//	@Summary     Fetches one registration by ID
//	@Tags        registrations
//	@Produce     json
//	@Param       id path int true "registration ID"
//	@Success     200 {object} domain.Registration
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /registrations/{id} [get]
func (h *RegistrationHandler) HandleGetRegistration(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	reg, err := h.svc.GetRegistration(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))
			return
		}

		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, reg)
}

// HandleGetQRCode godoc
//
//	@Summary     Issues the scannable token for a registration's current QR code
//	@Tags        registrations
//	@Produce     json
//	@Param       id path int true "registration ID"
//	@Success     200 {object} response.QRCodeResponse
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /registrations/{id}/qrcode [get]
func (h *RegistrationHandler) HandleGetQRCode(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	token, err := h.svc.IssueToken(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))
			return
		}

		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.QRCodeResponse{
		RegistrationID: id,
		Token:          token,
	})
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New(name+" must be a positive integer")))
		return 0, false
	}

	return uint(id), true
}

func pagination(ctx *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	offset, _ = strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
