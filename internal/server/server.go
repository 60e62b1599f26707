package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/telemetry"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はechoを組み立ててルートを登録する。
func New(cfg config.Config, orderH *handler.OrderHandler, paymentH *handler.PaymentHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestContext)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	orderH.RegisterRoutes(e, cfg)
	paymentH.RegisterRoutes(e, cfg)

	return e
}

// echoが採番したリクエストIDをcontextへ載せ、ログに出せるようにする
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ctx := telemetry.WithRequestID(c.Request().Context(), rid)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
