package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	orch *orch.Orchestrator
}

type activeCallResponse struct {
	Call *orch.CallView `json:"call"`
}

// GET /api/calls/history?page=1&page_size=20
func (h *handlers) history(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	size, err := queryInt(c, "page_size", orch.DefaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
		return
	}
	c.JSON(http.StatusOK, h.orch.CallHistory(identityFrom(c).ID, page, size))
}

func (h *handlers) active(c *gin.Context) {
	view, ok := h.orch.ActiveCall(identityFrom(c).ID)
	if !ok {
		c.JSON(http.StatusOK, activeCallResponse{})
		return
	}
	c.JSON(http.StatusOK, activeCallResponse{Call: &view})
}

func (h *handlers) call(c *gin.Context) {
	view, err := h.orch.CallForParticipant(identityFrom(c).ID, domain.CallID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) availability(c *gin.Context) {
	target := domain.UserID(c.Param("userId"))
	if target == "" || len(target) > domain.MaxUserIDLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	c.JSON(http.StatusOK, h.orch.Availability(c.Request.Context(), identityFrom(c).ID, target))
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrCallNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
