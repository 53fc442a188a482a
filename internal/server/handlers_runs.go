package server

import (
	"net/http"
	"strconv"
)

// handleRunList handles GET /api/runs?limit=N.
func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := s.app.Storage.RunStorage().ListReports(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}

// handleRunGet handles GET /api/runs/{id}.
func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	runID := PathParam(r, "/api/runs/", "")
	if runID == "" {
		WriteError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	report, err := s.app.Storage.RunStorage().GetReport(r.Context(), runID)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
