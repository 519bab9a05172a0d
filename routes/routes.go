package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/battled-crew/battled-system/handlers"
	"github.com/battled-crew/battled-system/middleware"
	"github.com/battled-crew/battled-system/models"
)

// SetupRoutes wires every handler into the router. Read endpoints are
// public; anything that mutates tournament state sits behind a capability
// check.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	dancerHandler *handlers.DancerHandler,
	tournamentHandler *handlers.TournamentHandler,
	categoryHandler *handlers.CategoryHandler,
	performerHandler *handlers.PerformerHandler,
	battleHandler *handlers.BattleHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/login", authHandler.Login)
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireCapability(models.CapManageTournament))
		r.Post("/auth/register", authHandler.Register)
	})

	router.Route("/dancers", func(r chi.Router) {
		r.Get("/", dancerHandler.List)
		r.Get("/{dancerID}", dancerHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireCapability(models.CapRegisterPerformer))
			r.Post("/", dancerHandler.Create)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/standings", tournamentHandler.Standings)
		r.Get("/{tournamentID}/battles", battleHandler.Queue)
		r.Get("/{tournamentID}/categories", categoryHandler.List)
		r.Get("/{tournamentID}/categories/{categoryID}/performers", performerHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireCapability(models.CapManageTournament))

			r.Post("/", tournamentHandler.Create)
			r.Put("/{tournamentID}", tournamentHandler.Rename)
			r.Delete("/{tournamentID}", tournamentHandler.Delete)
			r.Post("/{tournamentID}/poster", tournamentHandler.UploadPoster)
			r.Post("/{tournamentID}/categories", categoryHandler.Create)
			r.Delete("/{tournamentID}/categories/{categoryID}", categoryHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireCapability(models.CapAdvancePhase))

			r.Post("/{tournamentID}/advance", tournamentHandler.Advance)
			r.Get("/{tournamentID}/advance/preview", tournamentHandler.PreviewAdvance)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireCapability(models.CapRegisterPerformer))

			r.Post("/{tournamentID}/categories/{categoryID}/performers", performerHandler.Register)
		})
	})

	router.Route("/categories/{categoryID}", func(r chi.Router) {
		r.Get("/", categoryHandler.Get)
	})

	router.Route("/performers/{performerID}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireCapability(models.CapRegisterPerformer))
			r.Delete("/", performerHandler.Unregister)
		})
	})

	router.Route("/battles/{battleID}", func(r chi.Router) {
		r.Get("/", battleHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireCapability(models.CapStartBattle))
			r.Post("/start", battleHandler.Start)
		})
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireCapability(models.CapEncodeResult))
			r.Post("/result", battleHandler.EncodeResult)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
