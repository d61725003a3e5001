package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/notegraph/internal/config"
	"github.com/seenimoa/notegraph/internal/logging"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"` // path the config is saved to
}

// handleGetConfig returns the current (running) configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := ConfigResponse{Config: s.cfg, ConfigFile: s.cfg.FilePath()}
	data, err := json.Marshal(APIResponse{Success: true, Data: resp})
	s.mu.RUnlock()

	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(data, '\n')) //nolint:errcheck
}

// handleUpdateConfig merges the provided partial configuration into the
// running config, rebuilds the renderer, persists the result and notifies
// WebSocket clients. Fields absent from the body keep their values.
// The api section is bound when the server starts and cannot change here.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneConfig(s.cfg)
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(next); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if apiChanged(s.cfg.API, next.API) {
		writeError(w, http.StatusBadRequest, "api settings take effect on restart; edit the config file instead")
		return
	}
	if err := next.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lvl, err := logging.ParseLevel(next.Logging.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Persist to disk.
	cfgPath := next.FilePath()
	if err := config.SaveToFile(next, cfgPath); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config: "+err.Error())
		return
	}

	s.apply(next)
	log.SetLevel(lvl)
	log.WithField("file", cfgPath).Info("configuration updated")

	s.wsHub.Broadcast(WSMessage{Type: "config_updated", Data: next.Chart})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     next,
			ConfigFile: cfgPath,
		},
	})
}

// handleGetConfigKeys reports where the commonly overridden settings
// come from.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	keys := config.CheckKeys(s.cfg)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    keys,
	})
}

// cloneConfig copies c so that decoding into the copy cannot reach c's
// slices.
func cloneConfig(c *config.Config) *config.Config {
	cp := *c
	cp.Chart.Palette = append([]string(nil), c.Chart.Palette...)
	cp.API.CORSOrigins = append([]string(nil), c.API.CORSOrigins...)
	return &cp
}

func apiChanged(a, b config.APIConfig) bool {
	return a.Host != b.Host || a.Port != b.Port || a.ServeUI != b.ServeUI ||
		!slices.Equal(a.CORSOrigins, b.CORSOrigins)
}
