package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/pkg/jwthelper"
)

const (
	CtxKeyUserID   = "user_id"
	CtxKeyUserRole = "user_role"
)

type Authenticator struct {
	signingKey string
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: signingKey,
	}
}

// VerifyJWT resolves the bearer token into {userID, role} and stores both
// on the request context. Downstream capability checks trust these values.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			response.AbortErr(ctx, response.ErrUnauthorized(errors.New("missing Authorization header")))
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			response.AbortErr(ctx, response.ErrUnauthorized(errors.New("malformed Authorization header")))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
		if err != nil {
			response.AbortErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Set(CtxKeyUserID, claims.UserID)
		ctx.Set(CtxKeyUserRole, claims.Role)
		ctx.Next()
	}
}
