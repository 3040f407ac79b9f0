package handler

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stagetrade/stagetrade-backend/internal/service"
)

// FanoutRunner is the batch entrypoint the cron endpoints invoke.
type FanoutRunner interface {
	Run(ctx context.Context) (*service.FanoutSummary, error)
}

// CronHandler exposes the scheduled job triggers. Callers authenticate with
// a shared secret instead of a Firebase token because the scheduler is not
// a user.
type CronHandler struct {
	runner FanoutRunner
	secret string
}

func NewCronHandler(runner FanoutRunner, secret string) *CronHandler {
	return &CronHandler{runner: runner, secret: secret}
}

func (h *CronHandler) authorized(c echo.Context) bool {
	if h.secret == "" {
		return false
	}
	auth := c.Request().Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

// ProcessPush runs the push fan-out job and reports its summary.
func (h *CronHandler) ProcessPush(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "invalid cron secret"))
	}
	summary, err := h.runner.Run(c.Request().Context())
	if err != nil {
		log.Printf("[cron] fanout failed: %v", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("fanout_failed", err.Error()))
	}
	return c.JSON(http.StatusOK, summary)
}

// CronStatus lets an admin trigger the same job from the dashboard and see
// the summary without knowing the scheduler secret.
func (h *CronHandler) CronStatus(c echo.Context) error {
	summary, err := h.runner.Run(c.Request().Context())
	if err != nil {
		log.Printf("[cron] fanout failed: %v", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("fanout_failed", err.Error()))
	}
	return c.JSON(http.StatusOK, summary)
}
