package http

import (
	"github.com/labstack/echo/v4"
)

// Routes groups what Register mounts. Authenticate and Idempotency come from the
// middleware package; Idempotency may be nil.
type Routes struct {
	Health *Handler
	Auth   *AuthHandler
	Quotes *QuoteHandler
	Claims *ClaimHandler

	Authenticate echo.MiddlewareFunc
	Idempotency  echo.MiddlewareFunc
}

func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)
	e.GET("/metrics", r.Health.Metrics())
	e.POST("/auth/login", r.Auth.Login)

	mw := []echo.MiddlewareFunc{r.Authenticate}
	if r.Idempotency != nil {
		mw = append(mw, r.Idempotency)
	}
	api := e.Group("", mw...)
	api.POST("/auth/password", r.Auth.ChangePassword)

	api.GET("/quotes", r.Quotes.List)
	api.POST("/quotes", r.Quotes.Create)
	api.GET("/quotes/:id", r.Quotes.Get)
	api.POST("/quotes/:id/items", r.Quotes.AddItem)
	api.POST("/quotes/:id/transitions", r.Quotes.Transition)

	api.POST("/quotes/:id/claim", r.Claims.Open)
	api.GET("/quotes/:id/claim", r.Claims.Get)
	api.POST("/quotes/:id/claim/agreed-price", r.Claims.SetAgreedPrice)
}
