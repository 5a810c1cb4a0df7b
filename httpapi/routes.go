package httpapi

import (
	"net/http"

	"github.com/padronhq/padron"
	"github.com/padronhq/padron/middleware"
	"github.com/padronhq/padron/store"
)

// API bundles the engine and the store behind the HTTP surface.
type API struct {
	engine *padron.Engine
	store  *store.Store
}

func New(engine *padron.Engine, st *store.Store) *API {
	return &API{engine: engine, store: st}
}

// Routes returns the fully wired handler: client-IP resolution, the
// authenticator, and per-route authorization guards. Paths on the engine's
// public list bypass the authenticator entirely; everything else runs through
// it and then hits a fail-closed guard.
func (a *API) Routes(trustProxy bool) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.Require
	admin := middleware.RequireRole(padron.RoleAdmin)
	superAdmin := middleware.RequireRole(padron.RoleSuperAdmin)

	mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(a.handleMe)))

	mux.Handle("GET /api/socios", requireAuth(http.HandlerFunc(a.handleListSocios)))
	mux.Handle("GET /api/socios/{id}", requireAuth(http.HandlerFunc(a.handleGetSocio)))
	mux.Handle("POST /api/socios", admin(http.HandlerFunc(a.handleCreateSocio)))
	mux.Handle("PUT /api/socios/{id}", admin(http.HandlerFunc(a.handleUpdateSocio)))
	mux.Handle("DELETE /api/socios/{id}", admin(http.HandlerFunc(a.handleDeleteSocio)))

	mux.Handle("GET /api/asambleas", requireAuth(http.HandlerFunc(a.handleListAssemblies)))
	mux.Handle("GET /api/asambleas/{id}", requireAuth(http.HandlerFunc(a.handleGetAssembly)))
	mux.Handle("POST /api/asambleas", admin(http.HandlerFunc(a.handleCreateAssembly)))
	mux.Handle("PATCH /api/asambleas/{id}", admin(http.HandlerFunc(a.handleUpdateAssemblyState)))
	mux.Handle("DELETE /api/asambleas/{id}", admin(http.HandlerFunc(a.handleDeleteAssembly)))

	// Reads are public (clients poll the maintenance banner); the write lives
	// on a separate, authenticated path because /api/config bypasses the
	// authenticator entirely.
	mux.HandleFunc("GET /api/config", a.handleGetConfig)
	mux.Handle("PUT /api/admin/config", superAdmin(http.HandlerFunc(a.handleSetConfig)))

	mux.Handle("GET /api/staff", admin(http.HandlerFunc(a.handleListStaff)))
	mux.Handle("POST /api/staff", admin(http.HandlerFunc(a.handleCreateStaff)))
	mux.Handle("POST /api/staff/password", requireAuth(http.HandlerFunc(a.handleChangePassword)))
	mux.Handle("POST /api/staff/{subject}/force-logout", admin(http.HandlerFunc(a.handleForceLogout)))
	mux.Handle("POST /api/staff/{subject}/deactivate", admin(http.HandlerFunc(a.handleDeactivateStaff)))
	mux.Handle("POST /api/staff/{subject}/reactivate", admin(http.HandlerFunc(a.handleReactivateStaff)))

	mux.HandleFunc("POST /api/padron/reset", a.handlePadronReset)
	mux.HandleFunc("POST /api/system/reset", a.handleSystemReset)

	mux.HandleFunc("GET /api/health", a.handleHealth)

	handler := middleware.Authenticate(a.engine)(mux)
	handler = middleware.ClientIP(trustProxy)(handler)

	return handler
}
