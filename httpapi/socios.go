package httpapi

import (
	"net/http"

	"github.com/padronhq/padron/store"
)

type socioRequest struct {
	Numero    int    `json:"numero"`
	Nombre    string `json:"nombre"`
	Documento string `json:"documento"`
	Categoria string `json:"categoria"`
	AlDia     bool   `json:"al_dia"`
}

func (a *API) handleListSocios(w http.ResponseWriter, r *http.Request) {
	socios, err := a.store.Socios().List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if socios == nil {
		socios = []store.Socio{}
	}
	writeJSON(w, http.StatusOK, socios)
}

func (a *API) handleGetSocio(w http.ResponseWriter, r *http.Request) {
	socio, err := a.store.Socios().GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, socio)
}

func (a *API) handleCreateSocio(w http.ResponseWriter, r *http.Request) {
	var req socioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Numero <= 0 || req.Nombre == "" {
		writeError(w, http.StatusBadRequest, "numero y nombre son obligatorios")
		return
	}

	socio := store.Socio{
		Numero:    req.Numero,
		Nombre:    req.Nombre,
		Documento: req.Documento,
		Categoria: req.Categoria,
		AlDia:     req.AlDia,
	}
	if err := a.store.Socios().Create(r.Context(), &socio); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, socio)
}

func (a *API) handleUpdateSocio(w http.ResponseWriter, r *http.Request) {
	socio, err := a.store.Socios().GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req socioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Numero <= 0 || req.Nombre == "" {
		writeError(w, http.StatusBadRequest, "numero y nombre son obligatorios")
		return
	}

	socio.Numero = req.Numero
	socio.Nombre = req.Nombre
	socio.Documento = req.Documento
	socio.Categoria = req.Categoria
	socio.AlDia = req.AlDia
	if err := a.store.Socios().Update(r.Context(), socio); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, socio)
}

func (a *API) handleDeleteSocio(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Socios().Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
