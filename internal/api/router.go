package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/health", h.Metrics.WrapHandler("health", http.HandlerFunc(h.Health))).Methods(http.MethodGet)
	r.Handle("/metrics", h.Metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Handle("/uploads", h.Metrics.WrapHandler("uploads", http.HandlerFunc(h.Upload))).Methods(http.MethodPost)
	v1.Handle("/reports/{id}", h.Metrics.WrapHandler("report_get", http.HandlerFunc(h.GetReport))).Methods(http.MethodGet)
	v1.Handle("/reports/{id}/narrative", h.Metrics.WrapHandler("narrative_get", http.HandlerFunc(h.GetNarrative))).Methods(http.MethodGet)
	v1.Handle("/reports/{id}", h.Metrics.WrapHandler("report_delete", http.HandlerFunc(h.DeleteReport))).Methods(http.MethodDelete)

	return r
}
