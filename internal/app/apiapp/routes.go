package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matchapp-io/match-service/internal/config"
	authsvc "github.com/matchapp-io/match-service/internal/services/auth"
	matchessvc "github.com/matchapp-io/match-service/internal/services/matches"
	usermatchessvc "github.com/matchapp-io/match-service/internal/services/usermatches"
	"github.com/matchapp-io/match-service/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager         *authsvc.JWTManager
	MatchesService     *matchessvc.Service
	UserMatchesService *usermatchessvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	matchesHandler := handlers.NewMatchesHandler(deps.MatchesService)
	userMatchesHandler := handlers.NewUserMatchesHandler(deps.UserMatchesService)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	apiKeyMW := APIKeyMiddleware(deps.Config.Auth.APIKey, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Route("/v1/matches", func(r chi.Router) {
		r.With(authMW).Post("/", matchesHandler.Create)
		r.With(authMW).Put("/", matchesHandler.Update)
		r.With(authMW).Get("/me", userMatchesHandler.Me)
		r.With(authMW).Post("/seen", userMatchesHandler.MarkSeen)
		r.With(authMW).Get("/rank", matchesHandler.Rank)
		r.With(authMW).Get("/{id}", matchesHandler.GetByID)
		r.With(apiKeyMW).Get("/", matchesHandler.GetAll)
		r.With(apiKeyMW).Delete("/{id}", matchesHandler.Delete)
	})
}
