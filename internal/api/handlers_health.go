// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and whether questions can be answered.
type HealthHandler struct {
	version  string
	answerer Answerer
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, answerer Answerer) *HealthHandler {
	return &HealthHandler{
		version:  version,
		answerer: answerer,
	}
}

// HandleHealth returns server health status. A missing credential does not
// make the server unhealthy; it is reported so operators can fix it.
func (h *HealthHandler) HandleHealth(c echo.Context) error {
	answerStatus := "ready"
	resp := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	}
	if h.answerer == nil {
		answerStatus = "unconfigured"
	} else if err := h.answerer.Ready(); err != nil {
		answerStatus = "unconfigured"
		resp["answer_error"] = err.Error()
	}
	resp["answer_service"] = answerStatus
	return c.JSON(http.StatusOK, resp)
}
