package auth

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

// Role is the caller role resolved by the external identity provider.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleOfficer     Role = "officer"
	RoleSWOfficer   Role = "sw-officer"
	RolePrincipal   Role = "principal"
)

// ParseRole validates a role string coming from a token claim or query param.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCoordinator, RoleOfficer, RoleSWOfficer, RolePrincipal:
		return Role(s), nil
	}
	return "", errors.New("unknown role: " + s)
}

// Actor is the authenticated caller of a request.
type Actor struct {
	Name string
	Role Role
}

type contextKey string

const ActorKey contextKey = "actor"

var ErrNoActor = errors.New("actor not found")

// CurrentActor retrieves the caller from the context. Returns ErrNoActor if
// the request carried no resolvable identity.
func CurrentActor(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(ActorKey).(Actor)
	if !ok {
		log.Trace("actor not found in context")
		return Actor{}, ErrNoActor
	}
	return actor, nil
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}
