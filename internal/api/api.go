package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/susu3304/pairbot/internal/rounds"
)

// API serves read-only views of the latest round and pairing history.
type API struct {
	router *mux.Router
	rounds *rounds.Service
	bind   string
}

func New(bind string, svc *rounds.Service) *API {
	api := &API{
		router: mux.NewRouter(),
		rounds: svc,
		bind:   bind,
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")

	// Public endpoints. Registered on the root router so a wrong method
	// gets 405; a subrouter answers it with 404.
	a.router.HandleFunc("/api/public/guilds/{guild_id}/round", a.handleLatestRound).Methods("GET")
	a.router.HandleFunc("/api/public/guilds/{guild_id}/members/{user_id}/partners", a.handlePartners).Methods("GET")
}

func (a *API) Handler() http.Handler {
	// Read-only and unauthenticated, so any origin may read it.
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

func (a *API) Start() error {
	log.Printf("API server listening on http://%s", a.bind)
	return http.ListenAndServe(a.bind, a.Handler())
}
