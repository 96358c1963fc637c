package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/textassist"
	"github.com/erazemk/lostfound/internal/workflow"
)

// Options wires the router's collaborators.
type Options struct {
	DB        *sql.DB
	JWTSecret string
	Engine    *workflow.Engine
	Assist    *textassist.Assistant
	Policy    AccountPolicy
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: opts.DB, JWTSecret: opts.JWTSecret, Policy: opts.Policy}
	usersHandler := &UsersHandler{DB: opts.DB}
	itemsHandler := &ItemsHandler{Engine: opts.Engine}
	claimsHandler := &ClaimsHandler{Engine: opts.Engine}
	assistHandler := &AssistHandler{Assist: opts.Assist}

	authMW := AuthMiddleware(opts.JWTSecret, opts.DB)
	optionalMW := OptionalAuth(opts.JWTSecret, opts.DB)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/categories", Categories)

	// Own account.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))

	// Items: anyone can browse; the workflow decides what each caller sees.
	mux.Handle("GET /api/items", optionalMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/{id}", optionalMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("GET /api/items/{id}/image", optionalMW(http.HandlerFunc(itemsHandler.GetImage)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("POST /api/items/{id}/approve", authMW(http.HandlerFunc(itemsHandler.Approve)))
	mux.Handle("POST /api/items/{id}/returned", authMW(http.HandlerFunc(itemsHandler.MarkReturned)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))

	// Claims.
	mux.Handle("POST /api/items/{id}/claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.Handle("POST /api/items/{id}/claims/{claimId}/approve", authMW(http.HandlerFunc(claimsHandler.Approve)))
	mux.Handle("POST /api/items/{id}/claims/{claimId}/reject", authMW(http.HandlerFunc(claimsHandler.Reject)))

	// Caller's own reports and claims.
	mux.Handle("GET /api/me/reports", authMW(http.HandlerFunc(itemsHandler.MyReports)))
	mux.Handle("GET /api/me/claims", authMW(http.HandlerFunc(claimsHandler.Mine)))

	// Writing helpers.
	mux.Handle("POST /api/assist/enhance", authMW(http.HandlerFunc(assistHandler.Enhance)))
	mux.Handle("POST /api/assist/categorize", authMW(http.HandlerFunc(assistHandler.Categorize)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	return mux
}
