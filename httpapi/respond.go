package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/padronhq/padron"
	"github.com/padronhq/padron/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps sentinel errors to HTTP statuses. Unrecognized errors
// become an opaque 500: internal failure detail never reaches clients.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, padron.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "credenciales inválidas")
	case errors.Is(err, padron.ErrLoginRateLimited):
		writeError(w, http.StatusTooManyRequests, "demasiados intentos")
	case errors.Is(err, padron.ErrAccountInactive):
		writeError(w, http.StatusForbidden, "cuenta desactivada")
	case errors.Is(err, padron.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "cuenta inexistente")
	case errors.Is(err, padron.ErrPasswordReuse):
		writeError(w, http.StatusBadRequest, "la clave nueva debe ser distinta")
	case errors.Is(err, padron.ErrRoleInvalid):
		writeError(w, http.StatusBadRequest, "rol inválido")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "no encontrado")
	case errors.Is(err, store.ErrInvalidState):
		writeError(w, http.StatusBadRequest, "estado inválido")
	default:
		writeError(w, http.StatusInternalServerError, "error interno")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo inválido")
		return false
	}
	return true
}
