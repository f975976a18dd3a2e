package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/vietanh2810/campmeet-api/internal/domain"
)

func performWithRole(t *testing.T, role domain.Role, operation string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/probe",
		func(ctx *gin.Context) {
			ctx.Set(CtxKeyUserRole, string(role))
		},
		RequireOperation(operation),
		func(ctx *gin.Context) {
			ctx.Status(http.StatusOK)
		},
	)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(recorder, req)

	return recorder
}

func TestRequireOperation(t *testing.T) {
	tests := []struct {
		name      string
		role      domain.Role
		operation string
		want      int
	}{
		{"scanner can verify", domain.RoleScanner, OpAttendanceVerify, http.StatusOK},
		{"viewer cannot verify", domain.RoleViewer, OpAttendanceVerify, http.StatusForbidden},
		{"viewer can view registrations", domain.RoleViewer, OpRegistrationView, http.StatusOK},
		{"manager can allocate", domain.RoleManager, OpAllocationCreate, http.StatusOK},
		{"manager cannot remove all", domain.RoleManager, OpAllocationRemoveAll, http.StatusForbidden},
		{"admin can remove all", domain.RoleAdmin, OpAllocationRemoveAll, http.StatusOK},
		{"unknown role is denied", domain.Role("intruder"), OpRegistrationView, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := performWithRole(t, tt.role, tt.operation)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

func TestRequireOperationUnknownOperation(t *testing.T) {
	recorder := performWithRole(t, domain.RoleAdmin, "no.such.operation")
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
