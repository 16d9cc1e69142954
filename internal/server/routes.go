package server

import (
	"limpopo-api/internal/handler"
	"limpopo-api/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	guard *middleware.AuthGuard,
	authH *handler.AuthHandler,
	orderH *handler.OrderHandler,
	itemH *handler.MarketItemHandler,
) {
	authH.RegisterRoutes(e, guard)
	orderH.RegisterRoutes(e, guard)
	itemH.RegisterRoutes(e, guard)
}
