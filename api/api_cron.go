package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alertify/go-alertify-server/dispatch"
)

type CronApi struct {
	coordinator *dispatch.Coordinator
}

func NewCronApi(coordinator *dispatch.Coordinator) *CronApi {
	return &CronApi{coordinator: coordinator}
}

// Run one scan-and-dispatch cycle
// @Summary Run one scan-and-dispatch cycle
// @Description Safe to call while the interval timer cycle runs; an overlapping trigger is a no-op
// @Tags Cron
// @Success 200 {object} dispatch.CycleStats
// @Produce json
// @Router /cron/reminders [get]
func (a *CronApi) RunReminders(c *gin.Context) {
	stats := a.coordinator.RunCycle(c.Request.Context())
	c.JSON(http.StatusOK, stats)
}
