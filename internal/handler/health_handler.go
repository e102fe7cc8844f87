package handler

import (
	"net/http"

	"github.com/Alisher2102/TumiTGBot/internal/watcher"

	"github.com/labstack/echo/v4"
)

// 稼働確認用のハンドラ
type HealthHandler struct {
	w *watcher.Watcher
}

// DI
func NewHealthHandler(w *watcher.Watcher) *HealthHandler {
	return &HealthHandler{w: w}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)
}

func (h *HealthHandler) health(c echo.Context) error {
	st := h.w.Health()
	code := http.StatusOK
	if !st.Running {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, st)
}
