package httpapi

import (
	"net/http"

	"github.com/padronhq/padron/store"
)

type padronResetRequest struct {
	Socios []socioRequest `json:"socios"`
}

// handlePadronReset replaces the whole member registry atomically. An empty
// socios list wipes it.
func (a *API) handlePadronReset(w http.ResponseWriter, r *http.Request) {
	var req padronResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	socios := make([]store.Socio, 0, len(req.Socios))
	for _, s := range req.Socios {
		if s.Numero <= 0 || s.Nombre == "" {
			writeError(w, http.StatusBadRequest, "numero y nombre son obligatorios")
			return
		}
		socios = append(socios, store.Socio{
			Numero:    s.Numero,
			Nombre:    s.Nombre,
			Documento: s.Documento,
			Categoria: s.Categoria,
			AlDia:     s.AlDia,
		})
	}

	if err := a.store.Socios().ReplaceAll(r.Context(), socios); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"socios": len(socios)})
}

// handleSystemReset wipes socios and assemblies. Staff and configuration
// survive, so operators keep their access after the reset.
func (a *API) handleSystemReset(w http.ResponseWriter, r *http.Request) {
	if err := a.store.ResetSystem(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"mantenimiento": a.engine.MaintenanceActive(r.Context()),
	})
}
