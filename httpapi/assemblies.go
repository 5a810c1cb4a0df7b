package httpapi

import (
	"net/http"
	"time"

	"github.com/padronhq/padron/store"
)

type assemblyRequest struct {
	Titulo string    `json:"titulo"`
	Fecha  time.Time `json:"fecha"`
}

type assemblyStateRequest struct {
	Estado string `json:"estado"`
	Quorum *int   `json:"quorum"`
}

func (a *API) handleListAssemblies(w http.ResponseWriter, r *http.Request) {
	assemblies, err := a.store.Assemblies().List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if assemblies == nil {
		assemblies = []store.Assembly{}
	}
	writeJSON(w, http.StatusOK, assemblies)
}

func (a *API) handleCreateAssembly(w http.ResponseWriter, r *http.Request) {
	var req assemblyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Titulo == "" || req.Fecha.IsZero() {
		writeError(w, http.StatusBadRequest, "titulo y fecha son obligatorios")
		return
	}

	assembly := store.Assembly{Titulo: req.Titulo, Fecha: req.Fecha}
	if err := a.store.Assemblies().Create(r.Context(), &assembly); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assembly)
}

func (a *API) handleGetAssembly(w http.ResponseWriter, r *http.Request) {
	assembly, err := a.store.Assemblies().GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assembly)
}

// handleUpdateAssemblyState moves an assembly along its lifecycle and
// optionally records the quorum in the same call.
func (a *API) handleUpdateAssemblyState(w http.ResponseWriter, r *http.Request) {
	var req assemblyStateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	if req.Estado != "" {
		if err := a.store.Assemblies().SetEstado(r.Context(), id, req.Estado); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if req.Quorum != nil {
		if err := a.store.Assemblies().SetQuorum(r.Context(), id, *req.Quorum); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	assembly, err := a.store.Assemblies().GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assembly)
}

func (a *API) handleDeleteAssembly(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Assemblies().Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
