package server

import "net/http"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Announcements
	mux.HandleFunc("/api/announcements/attachment", s.handleAttachmentText)
	mux.HandleFunc("/api/announcements/", s.routeAnnouncements)

	// Bhavcopy analytics
	mux.HandleFunc("/api/bhav/compare", s.handleBhavCompare)
	mux.HandleFunc("/api/bhav/options", s.handleBhavOptions)
	mux.HandleFunc("/api/bhav/pcr", s.handleBhavPCR)

	// Batch runs
	mux.HandleFunc("/api/runs/", s.handleRunGet)
	mux.HandleFunc("/api/runs", s.handleRunList)

	// Reference data
	mux.HandleFunc("/api/refdata/", s.routeRefData)

	// Settings
	mux.HandleFunc("/api/settings/", s.handleSettingsItem)
	mux.HandleFunc("/api/settings", s.handleSettingsList)
}
