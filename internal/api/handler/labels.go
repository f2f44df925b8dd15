package handler

import (
	"net/http"

	"github.com/skywindow/skywindow/internal/api/middleware"
	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/weather"
)

// annotate labels the request with its canonical activity and unit system.
// Unknown activities collapse to the default id so label values stay bounded.
func annotate(r *http.Request, table *safety.Table, activityID string, units weather.UnitSystem) {
	activity := ""
	if activityID != "" && table != nil {
		activity = table.Canonical(activityID)
	}
	middleware.Annotate(r.Context(), activity, string(units))
}
