package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warmbed/internal/models"
	"warmbed/internal/service"
)

const (
	statusOK          = "ok"
	statusScheduleSet = "schedule_updated"

	errInvalidProfileID = "invalid profile id"
	errGetSchedule      = "failed to load schedule"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

func profileIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidProfileID})
		return 0, false
	}
	return id, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get resolved schedule
// @Description  Returns the sleep window and the stages that drive the device (custom or derived defaults).
// @Tags         schedules
// @Produce      json
// @Param        id   path   int  true  "Profile ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/profiles/{id}/schedule [get]
// @Security     BearerAuth
func (h *Handler) getSchedule(c *gin.Context) {
	id, ok := profileIDParam(c)
	if !ok {
		return
	}
	view, err := h.services.Schedules.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSchedule, "schedule_get_failed", err, "profile_id", id)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ScheduleUpdateRequest is an exported model for Swagger docs of the
// schedule update payload.
type ScheduleUpdateRequest struct {
	// Bed time as HH:MM
	BedTime string `json:"bed_time" example:"23:00"`
	// Wake time as HH:MM; may be earlier than bed time (overnight window)
	WakeTime string `json:"wake_time" example:"07:00"`
	// Optional JSON stage list; empty keeps the derived 3-stage default
	CustomStages string `json:"custom_stages,omitempty" example:"[{\"time\":\"23:00\",\"temp\":20}]"`
}

// @Summary      Update schedule
// @Description  Validates and stores bed/wake times and an optional custom stage list.
// @Tags         schedules
// @Accept       json
// @Produce      json
// @Param        id    path   int                    true  "Profile ID"
// @Param        body  body   ScheduleUpdateRequest  true  "Schedule payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/profiles/{id}/schedule [put]
// @Security     BearerAuth
func (h *Handler) updateSchedule(c *gin.Context) {
	id, ok := profileIDParam(c)
	if !ok {
		return
	}
	var req models.ScheduleUpdate
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Schedules.Update(c.Request.Context(), id, req); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		// Validation failures surface as bad requests with the reason.
		if h.log != nil {
			h.log.Infow("schedule_update_rejected", "profile_id", id, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusScheduleSet, "profile_id": id})
}
