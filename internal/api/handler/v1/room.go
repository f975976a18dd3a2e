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

type RoomService interface {
	CreateRoom(ctx context.Context, room domain.Room) (domain.Room, error)
	UpdateRoom(ctx context.Context, room domain.Room) (domain.Room, error)
	GetRoom(ctx context.Context, id uint) (domain.Room, error)
	GetRooms(ctx context.Context) ([]domain.Room, error)
}

type RoomHandler struct {
	svc RoomService
}

func NewRoomHandler(svc RoomService) *RoomHandler {
	return &RoomHandler{
		svc: svc,
	}
}

// HandleCreateRoom godoc
//
//	@Summary     Creates a room
//	@Tags        rooms
//	@Accept      json
//	@Produce     json
//	@Param       request body request.CreateRoomRequest true "room"
//	@Success     201 {object} domain.Room
//	@Failure     400 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /rooms [post]
func (h *RoomHandler) HandleCreateRoom(ctx *gin.Context) {
	var req request.CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateRoom(ctx.Request.Context(), domain.Room{
		Name:     req.Name,
		Gender:   domain.Gender(req.Gender),
		Capacity: req.Capacity,
		IsActive: true,
	})
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateRoom godoc
//
//	@Summary     Updates a room
//	@Tags        rooms
//	@Accept      json
//	@Produce     json
//	@Param       id path int true "room ID"
//	@Param       request body request.UpdateRoomRequest true "room"
//	@Success     200 {object} domain.Room
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /rooms/{id} [put]
func (h *RoomHandler) HandleUpdateRoom(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.UpdateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	room := domain.Room{
		ID:       id,
		Name:     req.Name,
		Gender:   domain.Gender(req.Gender),
		Capacity: req.Capacity,
		IsActive: true,
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	updated, err := h.svc.UpdateRoom(ctx.Request.Context(), room)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))
			return
		}

		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleGetRoom godoc
//
//	@Summary     Fetches one room with its occupancy
//	@Tags        rooms
//	@Produce     json
//	@Param       id path int true "room ID"
//	@Success     200 {object} domain.Room
//	@Failure     400 {object} response.Err
//	@Failure     404 {object} response.Err
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /rooms/{id} [get]
func (h *RoomHandler) HandleGetRoom(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	room, err := h.svc.GetRoom(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))
			return
		}

		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, room)
}

// HandleListRooms godoc
//
//	@Summary     Lists all rooms with their occupancies
//	@Tags        rooms
//	@Produce     json
//	@Success     200 {array} domain.Room
//	@Failure     500 {object} response.Err
//	@Security    BearerAuth
//	@Router      /rooms [get]
func (h *RoomHandler) HandleListRooms(ctx *gin.Context) {
	rooms, err := h.svc.GetRooms(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, rooms)
}
