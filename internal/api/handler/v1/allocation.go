package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/service"
)

type AllocationService interface {
	GroupingPreview(ctx context.Context) ([]service.AgeGroup, error)
	AllocateRooms(ctx context.Context, candidateIDs, roomIDs []uint) (service.AllocationResult, error)
	AutoAllocateRooms(ctx context.Context) (service.AllocationResult, error)
	AllocatePlatoons(ctx context.Context, candidateIDs, platoonIDs []uint) (service.AllocationResult, error)
	AutoAllocatePlatoons(ctx context.Context) (service.AllocationResult, error)
	RemoveRoomAllocation(ctx context.Context, registrationID uint) (int, error)
	ClearRoom(ctx context.Context, roomID uint) (int, error)
	ClearAllRooms(ctx context.Context) (int, error)
	RemovePlatoonAllocation(ctx context.Context, registrationID uint) (int, error)
	ClearPlatoon(ctx context.Context, platoonID uint) (int, error)
	ClearAllPlatoons(ctx context.Context) (int, error)
}

type AllocationHandler struct {
	svc AllocationService
}

func NewAllocationHandler(svc AllocationService) *AllocationHandler {
	return &AllocationHandler{
		svc: svc,
	}
}

// HandleGroupingPreview godoc
//
//	@Summary     Previews gender and age-band grouping without committing
//	@Tags        allocations
//	@Produce     json
//	@Success     200 {object} response.GroupingResponse
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/groups [get]
func (h *AllocationHandler) HandleGroupingPreview(ctx *gin.Context) {
	groups, err := h.svc.GroupingPreview(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.GroupingResponse{Groups: groups})
}

// HandleAllocateRooms godoc
//
//	@Summary     Places chosen registrants into chosen rooms, all-or-nothing
//	@Tags        allocations
//	@Accept      json
//	@Produce     json
//	@Param       request body request.AllocateRoomsRequest true "allocation request"
//	@Success     200 {object} response.AllocationResponse
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     409 {object} response.Err
//	@Failure     422 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/rooms [post]
func (h *AllocationHandler) HandleAllocateRooms(ctx *gin.Context) {
	var req request.AllocateRoomsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.AllocateRooms(ctx.Request.Context(), req.RegistrationIDs, req.RoomIDs)
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewAllocationResponse(result))
}

// HandleAutoAllocateRooms godoc
//
//	@Summary     Distributes all verified unallocated registrants across all active rooms
//	@Tags        allocations
//	@Produce     json
//	@Success     200 {object} response.AllocationResponse
//	@Failure     409 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/rooms/auto [post]
func (h *AllocationHandler) HandleAutoAllocateRooms(ctx *gin.Context) {
	result, err := h.svc.AutoAllocateRooms(ctx.Request.Context())
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewAllocationResponse(result))
}

// HandleAllocatePlatoons godoc
//
//	@Summary     Places chosen registrants into chosen platoons round-robin
//	@Tags        allocations
//	@Accept      json
//	@Produce     json
//	@Param       request body request.AllocatePlatoonsRequest true "allocation request"
//	@Success     200 {object} response.AllocationResponse
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     409 {object} response.Err
//	@Failure     422 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/platoons [post]
func (h *AllocationHandler) HandleAllocatePlatoons(ctx *gin.Context) {
	var req request.AllocatePlatoonsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.AllocatePlatoons(ctx.Request.Context(), req.RegistrationIDs, req.PlatoonIDs)
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewAllocationResponse(result))
}

// HandleAutoAllocatePlatoons godoc
//
//	@Summary     Distributes all verified registrants without a platoon across all platoons
//	@Tags        allocations
//	@Produce     json
//	@Success     200 {object} response.AllocationResponse
//	@Failure     409 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/platoons/auto [post]
func (h *AllocationHandler) HandleAutoAllocatePlatoons(ctx *gin.Context) {
	result, err := h.svc.AutoAllocatePlatoons(ctx.Request.Context())
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewAllocationResponse(result))
}

// HandleRemoveRoomAllocation godoc
//
//	@Summary     Frees one registration's room allocation
//	@Tags        allocations
//	@Produce     json
//	@Param       id path int true "registration ID"
//	@Success     200 {object} response.RemovalResponse
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/rooms/registrations/{id} [delete]
func (h *AllocationHandler) HandleRemoveRoomAllocation(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	removed, err := h.svc.RemoveRoomAllocation(ctx.Request.Context(), id)
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.RemovalResponse{
		Message:      "room allocation removed",
		RemovedCount: removed,
	})
}

// HandleClearRoom godoc
//
//	@Summary     Empties one room
//	@Tags        allocations
//	@Produce     json
//	@Param       id path int true "room ID"
//	@Success     200 {object} response.RemovalResponse
//	@Failure     400 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/rooms/{id} [delete]
func (h *AllocationHandler) HandleClearRoom(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	removed, err := h.svc.ClearRoom(ctx.Request.Context(), id)
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.RemovalResponse{
		Message:      "room cleared",
		RemovedCount: removed,
	})
}

// HandleClearAllRooms godoc
//
//	@Summary     Removes every room allocation
//	@Tags        allocations
//	@Produce     json
//	@Success     200 {object} response.RemovalResponse
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/rooms [delete]
func (h *AllocationHandler) HandleClearAllRooms(ctx *gin.Context) {
	removed, err := h.svc.ClearAllRooms(ctx.Request.Context())
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.RemovalResponse{
		Message:      "all room allocations removed",
		RemovedCount: removed,
	})
}

// HandleRemovePlatoonAllocation godoc
//
//	@Summary     Frees one registration's platoon allocation
//	@Tags        allocations
//	@Produce     json
//	@Param       id path int true "registration ID"
//	@Success     200 {object} response.RemovalResponse
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/platoons/registrations/{id} [delete]
func (h *AllocationHandler) HandleRemovePlatoonAllocation(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	removed, err := h.svc.RemovePlatoonAllocation(ctx.Request.Context(), id)
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.RemovalResponse{
		Message:      "platoon allocation removed",
		RemovedCount: removed,
	})
}

// HandleClearPlatoon godoc
//
//	@Summary     Empties one platoon
//	@Tags        allocations
//	@Produce     json
//	@Param       id path int true "platoon ID"
//	@Success     200 {object} response.RemovalResponse
//	@Failure     400 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/platoons/{id} [delete]
func (h *AllocationHandler) HandleClearPlatoon(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	removed, err := h.svc.ClearPlatoon(ctx.Request.Context(), id)
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.RemovalResponse{
		Message:      "platoon cleared",
		RemovedCount: removed,
	})
}

// HandleClearAllPlatoons godoc
//
//	@Summary     Removes every platoon allocation
//	@Tags        allocations
//	@Produce     json
//	@Success     200 {object} response.RemovalResponse
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /allocations/platoons [delete]
func (h *AllocationHandler) HandleClearAllPlatoons(ctx *gin.Context) {
	removed, err := h.svc.ClearAllPlatoons(ctx.Request.Context())
	if err != nil {
		renderAllocationErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.RemovalResponse{
		Message:      "all platoon allocations removed",
		RemovedCount: removed,
	})
}

func renderAllocationErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRegistrationNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrPlatoonNotFound):
		response.RenderErr(ctx, response.ErrNotFound(err))
	case errors.Is(err, service.ErrNotVerified):
		response.RenderErr(ctx, response.ErrUnprocessable("not_verified", err))
	case errors.Is(err, service.ErrGenderMismatch):
		response.RenderErr(ctx, response.ErrUnprocessable("gender_mismatch", err))
	case errors.Is(err, service.ErrInsufficientCapacity):
		response.RenderErr(ctx, response.ErrUnprocessable("insufficient_capacity", err))
	case errors.Is(err, service.ErrConcurrentModification):
		response.RenderErr(ctx, response.ErrConflict("concurrent_modification", err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
