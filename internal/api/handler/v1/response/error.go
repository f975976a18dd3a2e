package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the error payload for every non-2xx response. Kind is a stable
// machine-readable discriminator, Msg is for humans.
type Err struct {
	StatusCode int    `json:"-"`
	Kind       string `json:"kind"`
	Msg        string `json:"error"`
}

func (e *Err) Error() string {
	return e.Msg
}

func NewErr(statusCode int, kind string, err error) *Err {
	return &Err{
		StatusCode: statusCode,
		Kind:       kind,
		Msg:        err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, "bad_request", err)
}

func ErrInvalidToken(err error) *Err {
	return NewErr(http.StatusBadRequest, "invalid_token", err)
}

func ErrUnauthorized(err error) *Err {
	return NewErr(http.StatusUnauthorized, "unauthorized", err)
}

func ErrPermissionDenied(err error) *Err {
	return NewErr(http.StatusForbidden, "permission_denied", err)
}

func ErrNotFound(err error) *Err {
	return NewErr(http.StatusNotFound, "not_found", err)
}

func ErrConflict(kind string, err error) *Err {
	return NewErr(http.StatusConflict, kind, err)
}

func ErrUnprocessable(kind string, err error) *Err {
	return NewErr(http.StatusUnprocessableEntity, kind, err)
}

func ErrServiceUnavailable(err error) *Err {
	return NewErr(http.StatusServiceUnavailable, "storage_unavailable", err)
}

func ErrInternalServerError(err error) *Err {
	return NewErr(http.StatusInternalServerError, "internal", err)
}

// RenderErr writes the error response. Server-side failures are logged
// with the request path, client mistakes are not.
func RenderErr(ctx *gin.Context, err *Err) {
	if err.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("server error",
			zap.String("path", ctx.FullPath()),
			zap.Int("status", err.StatusCode),
			zap.String("error", err.Msg),
		)
	}

	ctx.JSON(err.StatusCode, err)
}

// AbortErr renders the error and stops the middleware chain.
func AbortErr(ctx *gin.Context, err *Err) {
	RenderErr(ctx, err)
	ctx.Abort()
}
