package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "authbase/internal/api/context"
	"authbase/internal/api/handlers"
	"authbase/internal/api/middleware"
)

type Dependencies struct {
	DeveloperHandler *handlers.DeveloperHandler
	OrgHandler       *handlers.OrgHandler
	AuthHandler      *handlers.AuthHandler
	ProfileHandler   *handlers.ProfileHandler
	HealthHandler    *handlers.HealthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	DevMiddleware    *middleware.DeveloperMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Middleware references
	authMid := deps.AuthMiddleware
	devMid := deps.DevMiddleware

	// Developer registration and token lifecycle
	router.POST("/api/v1/developers", wrap(deps.DeveloperHandler.Register))
	router.POST("/api/v1/developers/confirm", wrap(deps.DeveloperHandler.Confirm))
	router.POST("/api/v1/developers/confirm/resend", wrap(deps.DeveloperHandler.ResendConfirmation))
	router.POST("/api/v1/developers/token", wrap(deps.DeveloperHandler.RetrieveToken))
	router.POST("/api/v1/developers/token/regenerate", wrap(deps.DeveloperHandler.RegenerateToken))
	router.GET("/api/v1/developers/validate-token",
		chain(deps.DeveloperHandler.ValidateToken, devMid.Handle))
	router.POST("/api/v1/developers/password/reset", wrap(deps.DeveloperHandler.ResetPassword))

	// Organization management
	router.POST("/api/v1/organizations",
		chain(deps.OrgHandler.Create, devMid.Handle))
	router.POST("/api/v1/organizations/batch",
		chain(deps.OrgHandler.CreateBatch, devMid.Handle))
	router.GET("/api/v1/organizations/:app_id/validate",
		chain(deps.OrgHandler.Validate, devMid.Handle))

	// End-user authentication
	router.POST("/api/v1/auth/signup",
		chain(deps.AuthHandler.Signup, devMid.Handle))
	router.POST("/api/v1/auth/confirm", wrap(deps.AuthHandler.ConfirmEmail))
	router.POST("/api/v1/auth/confirm/resend", wrap(deps.AuthHandler.ResendEmailVerification))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))
	router.POST("/api/v1/auth/login/validate", wrap(deps.AuthHandler.LoginValidate))
	router.POST("/api/v1/auth/otp/resend", wrap(deps.AuthHandler.ResendOTP))
	router.POST("/api/v1/auth/logout",
		chain(deps.AuthHandler.Logout, authMid.Handle))
	router.POST("/api/v1/auth/password/forgot", wrap(deps.AuthHandler.ForgotPassword))
	router.POST("/api/v1/auth/password/reset", wrap(deps.AuthHandler.ResetPassword))
	router.GET("/api/v1/auth/users/:user_id/validate",
		chain(deps.AuthHandler.ValidateUser, devMid.Handle))

	// Profiles; the handler resolves the identity itself since either a user
	// session or a developer header is acceptable
	router.GET("/api/v1/profile", wrap(deps.ProfileHandler.Get))
	router.PATCH("/api/v1/profile", wrap(deps.ProfileHandler.Update))
	router.DELETE("/api/v1/profile", wrap(deps.ProfileHandler.Delete))

	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
