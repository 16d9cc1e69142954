package server

import (
	"log/slog"

	appmw "limpopo-api/internal/middleware"

	v10 "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// echoのc.Validate用
type requestValidator struct {
	validate *v10.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func New(log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &requestValidator{validate: v10.New()}

	e.Use(echomw.Recover())
	e.Use(appmw.RequestLogger(log))

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
