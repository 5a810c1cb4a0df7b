package httpapi

import (
	"net/http"
	"time"

	"github.com/padronhq/padron"
)

type loginRequest struct {
	Usuario string `json:"usuario"`
	Clave   string `json:"clave"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Perfil    profileBody `json:"perfil"`
}

type profileBody struct {
	Usuario string `json:"usuario"`
	Nombre  string `json:"nombre"`
	Rol     string `json:"rol"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Usuario == "" || req.Clave == "" {
		writeError(w, http.StatusBadRequest, "usuario y clave son obligatorios")
		return
	}

	result, err := a.engine.Login(r.Context(), req.Usuario, req.Clave)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Perfil:    profileOf(result.Profile),
	})
}

// handleMe echoes the authenticated principal, letting clients refresh their
// displayed profile without re-login.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := padron.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no autorizado")
		return
	}
	writeJSON(w, http.StatusOK, profileOf(*principal))
}

func profileOf(p padron.Principal) profileBody {
	return profileBody{
		Usuario: p.Subject,
		Nombre:  p.Name,
		Rol:     p.Role.String(),
	}
}
