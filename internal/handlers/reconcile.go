package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"warmbed/internal/service"
)

const errRunFailed = "reconciliation run failed"

// @Summary      Trigger a reconciliation pass
// @Description  Runs one pass over all profiles. An optional 'at' timestamp (RFC3339) runs the pass in simulation mode: actions are planned and logged but not executed, and credentials are not refreshed.
// @Tags         reconcile
// @Produce      json
// @Param        at  query   string  false  "Simulated time (RFC3339)"  example(2026-08-27T01:30:00Z)
// @Success      200  {object}  map[string]interface{}  "status, summary"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/reconcile [post]
// @Security     BearerAuth
func (h *Handler) triggerReconcile(c *gin.Context) {
	var opts service.RunOptions
	if qs := c.Query("at"); qs != "" {
		at, err := time.Parse(time.RFC3339, qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'at' time; use RFC3339"})
			return
		}
		opts.SimulatedTime = &at
	}

	summary, err := h.services.Reconciliation.Run(c.Request.Context(), opts)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRunFailed, "reconcile_run_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    statusOK,
		"simulated": opts.SimulatedTime != nil,
		"summary":   summary,
	})
}
