package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// TokenValidator reads the identity the external provider attached to a
// request. It verifies a Bearer token with "role" and "name" claims, or, in
// trust-headers mode, accepts X-User-Role/X-User-Name set by a trusted proxy.
type TokenValidator struct {
	Secret       []byte
	TrustHeaders bool
}

var ErrNoCredentials = errors.New("no credentials in request")

// ActorFromRequest resolves the caller of the given request.
func (v TokenValidator) ActorFromRequest(r *http.Request) (Actor, error) {
	if v.TrustHeaders {
		if roleHeader := r.Header.Get("X-User-Role"); roleHeader != "" {
			role, err := ParseRole(roleHeader)
			if err != nil {
				return Actor{}, err
			}
			return Actor{Name: r.Header.Get("X-User-Name"), Role: role}, nil
		}
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Actor{}, ErrNoCredentials
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Actor{}, errors.New("invalid authorization header format")
	}

	return v.actorFromToken(parts[1])
}

func (v TokenValidator) actorFromToken(tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.Secret, nil
	})
	if err != nil {
		log.Debugf("token validation failed: %v", err)
		return Actor{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return Actor{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, errors.New("invalid token claims")
	}

	roleClaim, _ := claims["role"].(string)
	role, err := ParseRole(roleClaim)
	if err != nil {
		return Actor{}, err
	}
	name, _ := claims["name"].(string)

	return Actor{Name: name, Role: role}, nil
}
