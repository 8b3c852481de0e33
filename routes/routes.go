package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/inkzone/bracket-engine/handlers"
	"github.com/inkzone/bracket-engine/middleware"
	"github.com/inkzone/bracket-engine/models"
)

// SetupRoutes mounts every API route on the router. Read endpoints are public,
// mutations require a valid token and the organizer role where noted.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	stageHandler *handlers.StageHandler,
	matchHandler *handlers.MatchHandler,
	historyHandler *handlers.HistoryHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/users/signup", authHandler.SignUp)
	router.Post("/users/signin", authHandler.SignIn)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/participants", tournamentHandler.ListParticipants)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireRole(models.RoleOrganizer))

			r.Post("/", tournamentHandler.Create)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatus)
			r.Post("/{tournamentID}/logo", tournamentHandler.UploadLogo)
			r.Post("/{tournamentID}/participants", tournamentHandler.RegisterParticipant)
			r.Post("/{tournamentID}/stages", stageHandler.Generate)
		})
	})

	router.Route("/stages", func(r chi.Router) {
		r.Get("/{stageID}", stageHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireRole(models.RoleOrganizer))

			r.Post("/{stageID}/rounds/pair", stageHandler.PairSwissRound)
			r.Delete("/{stageID}", stageHandler.Delete)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireRole(models.RoleOrganizer))

		r.Post("/{matchID}/start", matchHandler.Start)
		r.Post("/{matchID}/result", matchHandler.ReportResult)
		r.Post("/{matchID}/forfeit", matchHandler.ReportForfeit)
		r.Post("/{matchID}/undo", matchHandler.UndoResult)
	})

	router.Route("/teams/{teamID}", func(r chi.Router) {
		r.Get("/sets", historyHandler.TeamSets)
		r.Get("/winrates", historyHandler.TeamWinCounts)
	})

	router.Get("/ws/stages/{stageID}", webSocketHandler.SubscribeStage)
}
