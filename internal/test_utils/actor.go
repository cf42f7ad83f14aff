package test_utils

import (
	"context"

	"github.com/placementcell/placementcell/internal/auth"
)

// CtxWithActor returns a context carrying a test caller with the given role.
func CtxWithActor(name string, role auth.Role) context.Context {
	return auth.WithActor(context.Background(), auth.Actor{Name: name, Role: role})
}
