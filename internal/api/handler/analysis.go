package handler

import (
	"net/http"
	"time"

	"github.com/skywindow/skywindow/internal/api/models"
	"github.com/skywindow/skywindow/internal/api/response"
	"github.com/skywindow/skywindow/internal/report"
	"github.com/skywindow/skywindow/internal/schedule"
	"github.com/skywindow/skywindow/internal/summary"
	"github.com/skywindow/skywindow/internal/weather"
)

// AnalysisHandler exposes the scoring engine over caller-supplied weather data.
type AnalysisHandler struct {
	reports   *report.Builder
	scheduler *schedule.Scheduler
	now       func() time.Time
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(reports *report.Builder, scheduler *schedule.Scheduler) *AnalysisHandler {
	return &AnalysisHandler{
		reports:   reports,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// Analyze handles POST /v1/analyze.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if !decode(w, r, &req) {
		return
	}

	units := weather.ParseUnitSystem(req.Units)
	annotate(r, h.reports.Table(), req.Activity, units)

	current, ok := h.reports.Assess(req.Activity, req.Sample, units)
	if !ok {
		response.Unprocessable(w, r, "no analysis available")
		return
	}
	response.JSON(w, r, http.StatusOK, current)
}

// DryWindow handles POST /v1/dry-window.
func (h *AnalysisHandler) DryWindow(w http.ResponseWriter, r *http.Request) {
	var req models.DryWindowRequest
	if !decode(w, r, &req) {
		return
	}

	var threshold float64
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	var minDuration int
	if req.MinDuration != nil {
		minDuration = *req.MinDuration
	}

	units := weather.ParseUnitSystem(req.Units)
	annotate(r, h.reports.Table(), "", units)

	dw := h.reports.DryWindow(req.Minutely, req.Current, units, threshold, minDuration)
	response.JSON(w, r, http.StatusOK, dw)
}

// Slots handles POST /v1/slots.
func (h *AnalysisHandler) Slots(w http.ResponseWriter, r *http.Request) {
	var req models.SlotsRequest
	if !decode(w, r, &req) {
		return
	}

	loc := loadLocation(req.TimeZone, time.UTC)

	var day *time.Time
	if req.Date != "" {
		d, err := time.ParseInLocation(time.DateOnly, req.Date, loc)
		if err != nil {
			response.BadRequest(w, r, "invalid date", nil)
			return
		}
		day = &d
	}

	units := weather.ParseUnitSystem(req.Units)
	annotate(r, h.reports.Table(), req.Activity, units)

	slots := h.scheduler.FindBestSlots(req.Hourly, req.Activity, units, day)
	for i := range slots {
		slots[i].Start = slots[i].Start.In(loc)
		slots[i].End = slots[i].End.In(loc)
	}

	response.JSON(w, r, http.StatusOK, models.SlotsResponse{
		Slots:    slots,
		TimeZone: loc.String(),
		Date:     req.Date,
	})
}

// Summary handles POST /v1/summary.
func (h *AnalysisHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req models.SummaryRequest
	if !decode(w, r, &req) {
		return
	}

	now := h.now()
	if req.At != nil {
		now = *req.At
	}
	now = now.In(loadLocation(req.TimeZone, time.UTC))
	units := weather.ParseUnitSystem(req.Units)
	annotate(r, h.reports.Table(), req.Activity, units)

	narrative, free := h.reports.Narrative(req.Hourly, req.Current, req.Activity, units, now)
	resp := models.SummaryResponse{Narrative: narrative, Summary: free}
	if n, ok := weather.Normalize(req.Current, units); ok {
		resp.Outlook = summary.Classify(&n)
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// loadLocation resolves an IANA zone name, falling back when it is empty or unknown.
func loadLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
