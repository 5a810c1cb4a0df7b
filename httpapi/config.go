package httpapi

import (
	"net/http"
)

type configUpdateRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// handleGetConfig exposes runtime configuration, including the maintenance
// flag. The path is public: clients poll it to show the maintenance banner
// before their first authenticated call fails.
func (a *API) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	all, err := a.store.Config().All(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handleSetConfig writes one configuration value. Guarded to super_admin:
// flipping MODO_MANTENIMIENTO locks everyone else out, so only the exempt
// role may touch it.
func (a *API) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req configUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key es obligatoria")
		return
	}

	if err := a.store.Config().Set(r.Context(), req.Key, req.Value); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{req.Key: req.Value})
}
