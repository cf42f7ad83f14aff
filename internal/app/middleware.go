package app

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/placementcell/placementcell/internal/auth"
	"github.com/placementcell/placementcell/internal/config"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Propagate the caller identity attached by the identity provider into
	// the request context for downstream services.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			log.Debug("Resolving request actor")

			ctx := req.Context()
			actor, err := deps.AuthTokenValidator.ActorFromRequest(req)
			if err != nil {
				if !errors.Is(err, auth.ErrNoCredentials) {
					log.Debugf("failed to resolve actor: %v", err)
					http.Error(w, "invalid credentials", http.StatusUnauthorized)
					return
				}
				// Anonymous request: downstream handlers decide what needs
				// an actor.
			} else {
				log.Debugf("actor resolved: %s (%s)", actor.Name, actor.Role)
				ctx = auth.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
