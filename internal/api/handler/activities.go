package handler

import (
	"net/http"

	"github.com/skywindow/skywindow/internal/api/models"
	"github.com/skywindow/skywindow/internal/api/response"
	"github.com/skywindow/skywindow/internal/safety"
)

// ActivityHandler serves the activity threshold table.
type ActivityHandler struct {
	table *safety.Table
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(table *safety.Table) *ActivityHandler {
	return &ActivityHandler{table: table}
}

// ListActivities handles GET /v1/activities.
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ids := h.table.Activities()
	list := models.ActivityList{Items: make([]safety.ActivityThresholds, 0, len(ids))}
	for _, id := range ids {
		list.Items = append(list.Items, h.table.Thresholds(id))
	}
	response.JSON(w, r, http.StatusOK, list)
}
