package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reviewloop/backend/internal/services"
	"github.com/reviewloop/backend/pkg/response"
)

type SystemLogHandler struct {
	systemLog *services.SystemLogService
}

func NewSystemLogHandler(systemLog *services.SystemLogService) *SystemLogHandler {
	return &SystemLogHandler{systemLog: systemLog}
}

// List handles GET /api/system-logs?level=&module=&limit=&offset=.
func (h *SystemLogHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	logs, total, err := h.systemLog.List(services.LogFilter{
		Level:  c.Query("level"),
		Module: c.Query("module"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.ServerError(c, "failed to load system logs")
		return
	}

	response.Success(c, gin.H{
		"logs":  logs,
		"total": total,
	})
}

// Cleanup handles POST /api/system-logs/cleanup — manual retention run.
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	removed, err := h.systemLog.CleanupOldLogs()
	if err != nil {
		response.ServerError(c, "failed to clean up system logs")
		return
	}
	response.Success(c, gin.H{"removed": removed})
}
