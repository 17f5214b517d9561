package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/prefeituradigital/chamados/internal/chamado"
	"github.com/prefeituradigital/chamados/internal/cliente"
	"github.com/prefeituradigital/chamados/internal/config"
	httpmiddleware "github.com/prefeituradigital/chamados/internal/http/middleware"
	"github.com/prefeituradigital/chamados/internal/service"
	"github.com/prefeituradigital/chamados/internal/setor"
	"github.com/prefeituradigital/chamados/internal/storage"
)

// Handler concentra as dependências dos handlers HTTP.
type Handler struct {
	auth     *service.AuthService
	setores  *setor.Service
	clientes *cliente.Service
	chamados *chamado.Service
	avatars  storage.AvatarStore
}

// NewHandler cria o conjunto de handlers com as dependências injetadas.
func NewHandler(auth *service.AuthService, setores *setor.Service, clientes *cliente.Service, chamados *chamado.Service, avatars storage.AvatarStore) *Handler {
	if avatars == nil {
		avatars = storage.Disabled{}
	}
	return &Handler{auth: auth, setores: setores, clientes: clientes, chamados: chamados, avatars: avatars}
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	publicLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	authLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	// rotas públicas de autenticação
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.IPRateLimit(publicLimiter))

		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)
		r.Post("/auth/refresh", h.Refresh)
		r.Post("/auth/logout", h.Logout)
	})

	// rotas autenticadas
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.Auth(h.auth.JWT()))
		r.Use(httpmiddleware.UserRateLimit(authLimiter))

		r.Get("/auth/me", h.Me)
		r.Put("/perfil", h.UpdateProfile)
		r.Post("/perfil/avatar", h.UploadAvatar)

		r.Get("/clientes", h.ListClientes)
		r.Post("/clientes", h.CreateCliente)
		r.Get("/clientes/{id}", h.GetCliente)
		r.Put("/clientes/{id}", h.UpdateCliente)

		r.Get("/chamados", h.ListChamados)
		r.Post("/chamados", h.CreateChamado)
		r.Get("/chamados/{id}", h.GetChamado)

		r.Get("/setores", h.ListSetores)

		// triagem e configuração são restritas a administradores
		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RequireAdmin)

			r.Put("/chamados/{id}", h.UpdateChamado)

			r.Post("/setores", h.CreateSecretaria)
			r.Put("/setores/{id}", h.RenameSecretaria)
			r.Delete("/setores/{id}", h.DeleteSecretaria)
			r.Post("/setores/{id}/departamentos", h.AddDepartamento)
			r.Put("/departamentos/{id}", h.RenameDepartamento)
			r.Delete("/departamentos/{id}", h.DeleteDepartamento)
		})
	})

	return r
}
