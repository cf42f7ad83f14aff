package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/placementcell/placementcell/internal/config"
	"github.com/placementcell/placementcell/internal/database"
	"github.com/placementcell/placementcell/internal/rest"
	log "github.com/sirupsen/logrus"
)

// Application ties together configuration, storage, and the HTTP server.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
}

// NewApplication loads configuration, opens and migrates the database, and
// assembles the router with all handlers and middleware.
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, cfg.Database); err != nil {
		return nil, err
	}

	deps := BuildDependencies(db, cfg)

	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)

	if cfg.Frontend.Enabled {
		// Paths the API does not claim fall through to the dashboard.
		r.PathPrefix("/").Handler(rest.NewFrontendHandler("frontend", "index.html"))
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         ":8181",
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (a *Application) Run() error {
	log.Infof("Listening on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
