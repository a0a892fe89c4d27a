// Package server assembles the HTTP surface: JSON API, relay socket,
// health, metrics and the static frontend.
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pliu/chatsight/internal/auth"
	"github.com/pliu/chatsight/internal/chat"
	"github.com/pliu/chatsight/internal/config"
	"github.com/pliu/chatsight/internal/handlers"
	"github.com/pliu/chatsight/internal/insight"
	"github.com/pliu/chatsight/internal/middleware"
	"github.com/pliu/chatsight/internal/respond"
	"github.com/pliu/chatsight/internal/store"
	"github.com/pliu/chatsight/internal/ws"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Config   *config.Config
	Store    store.Store
	Auth     *auth.Service
	Chat     *chat.Service
	Insights *insight.Service
	Hub      *ws.Hub
}

// NewRouter mounts every API route both at the root and under /api.
func NewRouter(d Deps) http.Handler {
	authHandler := &handlers.AuthHandler{Auth: d.Auth}
	chatHandler := &handlers.ChatHandler{Chat: d.Chat}
	insightHandler := &handlers.InsightHandler{Insights: d.Insights}
	healthHandler := &handlers.HealthHandler{DB: d.Store, Relay: d.Hub}

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found")
	})

	mountAPI := func(r *mux.Router) {
		authRoutes := r.PathPrefix("/auth").Subrouter()
		authRoutes.Use(middleware.RateLimit(d.Config.RateLimit.RPS, d.Config.RateLimit.Burst))
		handle(authRoutes, "/register", http.MethodPost, authHandler.Register)
		handle(authRoutes, "/login", http.MethodPost, authHandler.Login)
		handle(authRoutes, "/logout", http.MethodPost, authHandler.Logout)

		protected := r.NewRoute().Subrouter()
		protected.Use(middleware.RequireAuth(d.Auth))
		handle(protected, "/users", http.MethodGet, chatHandler.ListUsers)
		handle(protected, "/messages/chathistory", http.MethodPost, chatHandler.ChatHistory)
		handle(protected, "/messages/sendmsg", http.MethodPost, chatHandler.SendMessage)
		handle(protected, "/insights/generate", http.MethodPost, insightHandler.Generate)

		handle(r, "/healthz", http.MethodGet, healthHandler.Check)
	}
	mountAPI(r.PathPrefix("/api").Subrouter())
	mountAPI(r)

	r.HandleFunc("/ws", d.Hub.ServeWS)
	r.HandleFunc("/socket", d.Hub.ServeWS)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if dir := d.Config.Server.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.PathPrefix("/").Handler(staticHandler(dir))
		}
	}
	return r
}

// handle registers fn for method and answers every other method on the same
// path with 405.
func handle(r *mux.Router, path, method string, fn http.HandlerFunc) {
	r.HandleFunc(path, fn).Methods(method)
	r.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		respond.MethodNotAllowed(w, method)
	})
}

func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Frontend assets change with every deploy.
		if strings.HasSuffix(r.URL.Path, ".css") || strings.HasSuffix(r.URL.Path, ".js") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		files.ServeHTTP(w, r)
	})
}
