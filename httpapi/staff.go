package httpapi

import (
	"net/http"

	"github.com/padronhq/padron"
)

type staffCreateRequest struct {
	Usuario string `json:"usuario"`
	Nombre  string `json:"nombre"`
	Rol     string `json:"rol"`
	Clave   string `json:"clave"`
}

type passwordChangeRequest struct {
	ClaveActual string `json:"clave_actual"`
	ClaveNueva  string `json:"clave_nueva"`
}

func (a *API) handleListStaff(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.store.Staff().List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type staffBody struct {
		Usuario string `json:"usuario"`
		Nombre  string `json:"nombre"`
		Rol     string `json:"rol"`
		Activo  bool   `json:"activo"`
	}
	out := make([]staffBody, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, staffBody{
			Usuario: account.Subject,
			Nombre:  account.Name,
			Rol:     account.Role.String(),
			Activo:  account.Active,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var req staffCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Usuario == "" || req.Clave == "" {
		writeError(w, http.StatusBadRequest, "usuario y clave son obligatorios")
		return
	}

	role, err := padron.ParseRole(req.Rol)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	hash, err := a.engine.HashPassword(req.Clave)
	if err != nil {
		writeError(w, http.StatusBadRequest, "clave demasiado corta")
		return
	}

	err = a.store.Staff().Create(r.Context(), padron.Account{
		Subject:      req.Usuario,
		Name:         req.Nombre,
		Role:         role,
		Active:       true,
		PasswordHash: hash,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// handleChangePassword lets an authenticated principal rotate their own
// password. The engine bumps the revocation epoch, so the caller's current
// credential dies with the change and the client must log in again.
func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := padron.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no autorizado")
		return
	}

	var req passwordChangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := a.engine.ChangePassword(r.Context(), principal.Subject, req.ClaveActual, req.ClaveNueva)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleForceLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.ForceLogout(r.Context(), r.PathValue("subject")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeactivateStaff(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.DeactivateAccount(r.Context(), r.PathValue("subject")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleReactivateStaff(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.ReactivateAccount(r.Context(), r.PathValue("subject")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
