package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/analyze"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/ingest"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/observability"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/publish"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/store"
)

// maxUploadBytes bounds CSV uploads; 20 MiB covers months of 5-minute CGM
// data with room to spare.
const maxUploadBytes = 20 << 20

const publishTimeout = 5 * time.Second

type Handlers struct {
	Log       *slog.Logger
	Parser    *ingest.Parser
	Analyzer  *analyze.Analyzer
	Store     store.Store
	Publisher *publish.Publisher
	Metrics   *observability.Metrics
}

// uploadResponse wraps the report with ingestion accounting.
type uploadResponse struct {
	Report      analyze.Report `json:"report"`
	RowsTotal   int            `json:"rowsTotal"`
	RowsSkipped int            `json:"rowsSkipped"`
}

// rejectedResponse is returned with 422 when the quality gate refuses the
// upload. The verdict's warnings tell the caller what to fix.
type rejectedResponse struct {
	Error   string          `json:"error"`
	Quality rejectedQuality `json:"dataQuality"`
}

type rejectedQuality struct {
	Score       int      `json:"qualityScore"`
	Reliability string   `json:"reliability"`
	Warnings    []string `json:"warnings"`
	SpanHours   float64  `json:"dataSpanHours"`
}

// Upload handles POST /api/v1/uploads. The CSV comes as the multipart field
// "file"; "device" optionally pins the device family.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.badRequest(w, "expected multipart form with a csv file")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.badRequest(w, "missing file field")
		return
	}
	defer file.Close()

	device := model.DeviceType(r.FormValue("device"))
	if device == "" {
		device = model.DeviceUnknown
	}

	res, err := h.Parser.Parse(file, device)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrEmptyFile),
			errors.Is(err, ingest.ErrNoTimestamp),
			errors.Is(err, ingest.ErrNoGlucoseColumn),
			errors.Is(err, ingest.ErrNoValidReadings):
			h.badRequest(w, err.Error())
		default:
			h.Log.Error("csv parse failed", "err", err)
			h.badRequest(w, "could not parse csv file")
		}
		return
	}

	start := time.Now()
	report := h.Analyzer.Run(res.Bundle)
	h.Metrics.AnalysisDone(time.Since(start))
	h.Metrics.Upload(string(res.Bundle.Device))

	if !report.Usable() {
		h.Metrics.UploadRejected()
		writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{
			Error: "data quality insufficient for analysis",
			Quality: rejectedQuality{
				Score:       report.Quality.Score,
				Reliability: string(report.Quality.Reliability),
				Warnings:    report.Quality.Warnings,
				SpanHours:   report.Quality.SpanHours,
			},
		})
		return
	}
	for _, f := range report.Findings {
		h.Metrics.Finding(f.Rule)
	}

	if err := h.Store.Save(r.Context(), report); err != nil {
		h.Log.Error("report save failed", "reportId", report.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not persist report"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := h.Publisher.Publish(ctx, report); err != nil {
			h.Log.Error("summary publish failed", "reportId", report.ID, "err", err)
		}
	}()

	w.Header().Set("Location", "/api/v1/reports/"+report.ID)
	writeJSON(w, http.StatusCreated, uploadResponse{
		Report:      report,
		RowsTotal:   res.RowsTotal,
		RowsSkipped: res.RowsSkipped,
	})
}

// GetReport handles GET /api/v1/reports/{id}.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	report, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		h.Log.Error("report fetch failed", "reportId", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not fetch report"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetNarrative handles GET /api/v1/reports/{id}/narrative?role=patient.
func (h *Handlers) GetNarrative(w http.ResponseWriter, r *http.Request) {
	role := analyze.Role(r.URL.Query().Get("role"))
	switch role {
	case "":
		role = analyze.RoleClinician
	case analyze.RoleClinician, analyze.RolePatient:
	default:
		h.badRequest(w, "role must be clinician or patient")
		return
	}

	id := mux.Vars(r)["id"]
	report, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		h.Log.Error("report fetch failed", "reportId", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not fetch report"})
		return
	}
	writeJSON(w, http.StatusOK, analyze.BuildNarrative(report, role))
}

// DeleteReport handles DELETE /api/v1/reports/{id}.
func (h *Handlers) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		h.Log.Error("report delete failed", "reportId", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not delete report"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "trutrend-analytics",
		"ts":      time.Now().UTC(),
	})
}

func (h *Handlers) badRequest(w http.ResponseWriter, msg string) {
	h.Log.Warn("bad request", "error", msg)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
