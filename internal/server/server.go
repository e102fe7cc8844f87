package server

import (
	"github.com/Alisher2102/TumiTGBot/internal/handler"

	"github.com/labstack/echo/v4"
)

// Start は運用確認用のHTTPサーバを起動する（ドメイン向けAPIは持たない）。
func Start(addr string, healthH *handler.HealthHandler) error {
	e := echo.New()
	e.HideBanner = true

	healthH.RegisterRoutes(e)

	return e.Start(addr)
}
