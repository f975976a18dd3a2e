package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository"
)

type PlatoonService interface {
	CreatePlatoon(ctx context.Context, platoon domain.Platoon) (domain.Platoon, error)
	UpdatePlatoon(ctx context.Context, platoon domain.Platoon) (domain.Platoon, error)
	GetPlatoon(ctx context.Context, id uint) (domain.Platoon, error)
	GetPlatoons(ctx context.Context) ([]domain.Platoon, error)
}

type PlatoonHandler struct {
	svc PlatoonService
}

func NewPlatoonHandler(svc PlatoonService) *PlatoonHandler {
	return &PlatoonHandler{
		svc: svc,
	}
}

// HandleCreatePlatoon godoc
//
//	@Summary     Creates a platoon
//	@Tags        platoons
//	@Accept      json
//	@Produce     json
//	@Param       request body request.CreatePlatoonRequest true "platoon"
//	@Success     201 {object} domain.Platoon
//	@Failure     400 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /platoons [post]
func (h *PlatoonHandler) HandleCreatePlatoon(ctx *gin.Context) {
	var req request.CreatePlatoonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreatePlatoon(ctx.Request.Context(), domain.Platoon{
		Name:        req.Name,
		Label:       req.Label,
		LeaderName:  req.LeaderName,
		LeaderPhone: req.LeaderPhone,
		Capacity:    req.Capacity,
	})
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdatePlatoon godoc
//
//	@Summary     Updates a platoon
//	@Tags        platoons
//	@Accept      json
//	@Produce     json
//	@Param       id path int true "platoon ID"
//	@Param       request body request.UpdatePlatoonRequest true "platoon"
//	@Success     200 {object} domain.Platoon
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /platoons/{id} [put]
func (h *PlatoonHandler) HandleUpdatePlatoon(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.UpdatePlatoonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdatePlatoon(ctx.Request.Context(), domain.Platoon{
		ID:          id,
		Name:        req.Name,
		Label:       req.Label,
		LeaderName:  req.LeaderName,
		LeaderPhone: req.LeaderPhone,
		Capacity:    req.Capacity,
	})
	if err != nil {
		if errors.Is(err, repository.ErrPlatoonNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))
			return
		}

		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleGetPlatoon godoc
//
//	@Summary     Fetches one platoon with its occupancy
//	@Tags        platoons
//	@Produce     json
//	@Param       id path int true "platoon ID"
//	@Success     200 {object} domain.Platoon
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /platoons/{id} [get]
func (h *PlatoonHandler) HandleGetPlatoon(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	platoon, err := h.svc.GetPlatoon(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPlatoonNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))
			return
		}

		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, platoon)
}

// HandleListPlatoons godoc
//
//	@Summary     Lists all platoons with their occupancies
//	@Tags        platoons
//	@Produce     json
//	@Success     200 {array} domain.Platoon
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /platoons [get]
func (h *PlatoonHandler) HandleListPlatoons(ctx *gin.Context) {
	platoons, err := h.svc.GetPlatoons(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, platoons)
}
