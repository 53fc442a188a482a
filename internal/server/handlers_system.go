package server

import (
	"net/http"
	"time"

	"github.com/ksiddharth/scripwatch/internal/common"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// handleSettingsList handles GET /api/settings.
func (s *Server) handleSettingsList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	all, err := s.app.Storage.KeyValueStorage().GetAll(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, all)
}

// handleSettingsItem handles GET/PUT/DELETE /api/settings/{key}.
func (s *Server) handleSettingsItem(w http.ResponseWriter, r *http.Request) {
	key := PathParam(r, "/api/settings/", "")
	if key == "" {
		WriteError(w, http.StatusBadRequest, "Setting key is required")
		return
	}

	kv := s.app.Storage.KeyValueStorage()

	switch r.Method {
	case http.MethodGet:
		value, err := kv.Get(r.Context(), key)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})

	case http.MethodPut:
		var body struct {
			Value string `json:"value"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		if err := kv.Set(r.Context(), key, body.Value); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": body.Value})

	case http.MethodDelete:
		if err := kv.Delete(r.Context(), key); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// routeRefData handles GET /api/refdata/{exchange}/scrips and
// GET /api/refdata/{exchange}/lookup?name=.
func (s *Server) routeRefData(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	exchange := PathParam(r, "/api/refdata/", "/")
	if exchange == "" {
		WriteError(w, http.StatusBadRequest, "Exchange is required")
		return
	}

	switch {
	case r.URL.Path == "/api/refdata/"+exchange+"/scrips":
		table, err := s.app.Storage.RefData().ScripCodes(exchange)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, table)

	case r.URL.Path == "/api/refdata/"+exchange+"/lookup":
		name := r.URL.Query().Get("name")
		if name == "" {
			WriteError(w, http.StatusBadRequest, "Query parameter 'name' is required")
			return
		}
		code, ok := s.app.Storage.RefData().LookupCode(exchange, name)
		if !ok {
			WriteError(w, http.StatusNotFound, "No scrip code for company: "+name)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"company_name": name, "code": code, "exchange": exchange})

	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
