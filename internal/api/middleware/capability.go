package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/domain"
)

// Operation names for the capability table. Handlers never check roles
// themselves; the table below is the single authorization policy.
const (
	OpAttendanceCheck    = "attendance.check"
	OpAttendanceVerify   = "attendance.verify"
	OpAttendanceUnverify = "attendance.unverify"

	OpRegistrationView   = "registration.view"
	OpRegistrationCreate = "registration.create"

	OpContainerView   = "container.view"
	OpContainerManage = "container.manage"

	OpAllocationView      = "allocation.view"
	OpAllocationCreate    = "allocation.create"
	OpAllocationRemove    = "allocation.remove"
	OpAllocationRemoveAll = "allocation.remove_all"

	OpRealtimeSubscribe = "realtime.subscribe"
)

var capabilities = map[string]domain.Role{
	OpAttendanceCheck:    domain.RoleScanner,
	OpAttendanceVerify:   domain.RoleScanner,
	OpAttendanceUnverify: domain.RoleScanner,

	OpRegistrationView:   domain.RoleViewer,
	OpRegistrationCreate: domain.RoleManager,

	OpContainerView:   domain.RoleViewer,
	OpContainerManage: domain.RoleManager,

	OpAllocationView:      domain.RoleViewer,
	OpAllocationCreate:    domain.RoleManager,
	OpAllocationRemove:    domain.RoleManager,
	OpAllocationRemoveAll: domain.RoleAdmin,

	OpRealtimeSubscribe: domain.RoleViewer,
}

// RequireOperation gates a route on the capability table: one lookup of
// operation -> minimum role per request.
func RequireOperation(operation string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		minRole, ok := capabilities[operation]
		if !ok {
			response.AbortErr(ctx, response.ErrPermissionDenied(fmt.Errorf("unknown operation %q", operation)))
			return
		}

		role := domain.Role(ctx.GetString(CtxKeyUserRole))
		if !role.AtLeast(minRole) {
			response.AbortErr(ctx, response.ErrPermissionDenied(
				fmt.Errorf("operation %q requires role %q or above", operation, minRole)))
			return
		}

		ctx.Next()
	}
}
