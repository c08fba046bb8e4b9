package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/target/dash-console/internal/ports"
	"github.com/target/dash-console/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth       *service.AuthService
	Profile    *service.ProfileService
	Navigation *service.NavigationStore
	Panels     *service.PanelRegistry
	Catalog    ports.NavigationCatalog
	Logger     *slog.Logger
	// EventKeepAlive is the SSE keep-alive interval (optional).
	EventKeepAlive time.Duration
	// WSOriginPatterns allow cross-origin WebSocket clients (optional).
	WSOriginPatterns []string
}

// NewRouter creates the console's HTTP handler with request-ID, logging and
// panic-recovery middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := loggerOr(services.Logger)
	mux := http.NewServeMux()

	registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, Logger: logger})

	requireAuth := RequireAuth(services.Auth, logger)
	registerProfileRoutes(mux, &ProfileHandlers{
		Profile: services.Profile,
		Auth:    services.Auth,
		Logger:  logger,
	}, requireAuth)

	registerNavigationRoutes(mux, &NavigationHandlers{
		Store:          services.Navigation,
		Catalog:        services.Catalog,
		Logger:         logger,
		KeepAlive:      services.EventKeepAlive,
		OriginPatterns: services.WSOriginPatterns,
	})
	registerPanelRoutes(mux, &PanelHandlers{Registry: services.Panels})

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Chain(mux, RequestID(), Logging(logger), Recover(logger))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /auth/sign-in", h.SignIn)
	mux.HandleFunc("POST /auth/sign-in-with-token", h.SignInWithToken)
	mux.HandleFunc("POST /auth/sign-out", h.SignOut)
	mux.HandleFunc("POST /auth/sign-up", h.SignUp)
	mux.HandleFunc("POST /auth/forgot-password", h.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", h.ResetPassword)
	mux.HandleFunc("POST /auth/unlock-session", h.UnlockSession)
	mux.HandleFunc("GET /auth/check", h.Check)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers, requireAuth Middleware) {
	mux.Handle("GET /me", requireAuth(http.HandlerFunc(h.Me)))
	mux.Handle("PATCH /me", requireAuth(http.HandlerFunc(h.Update)))
	mux.Handle("POST /me/status", requireAuth(http.HandlerFunc(h.UpdateStatus)))
	mux.Handle("GET /menu", requireAuth(http.HandlerFunc(h.Menu)))
}

func registerNavigationRoutes(mux *http.ServeMux, h *NavigationHandlers) {
	mux.HandleFunc("GET /navigation", h.List)
	mux.HandleFunc("GET /navigation/resolve", h.Resolve)
	mux.HandleFunc("GET /navigation/events", h.Events)
	mux.HandleFunc("GET /navigation/ws", h.Stream)
	mux.HandleFunc("GET /navigation/{slot}", h.Get)
	mux.HandleFunc("PUT /navigation/{slot}", h.Put)
	mux.HandleFunc("DELETE /navigation/{slot}", h.Delete)
	mux.HandleFunc("GET /navigation/{slot}/items/{id}", h.Item)
	mux.HandleFunc("GET /navigation/{slot}/items/{id}/parent", h.Parent)
	mux.HandleFunc("GET /navigation/{slot}/leaves", h.Leaves)
}

func registerPanelRoutes(mux *http.ServeMux, h *PanelHandlers) {
	mux.HandleFunc("GET /panels", h.List)
	mux.HandleFunc("GET /panels/{name}", h.Get)
	mux.HandleFunc("PUT /panels/{name}", h.Register)
	mux.HandleFunc("DELETE /panels/{name}", h.Deregister)
	mux.HandleFunc("POST /panels/{name}/{action}", h.Action)
}
