package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const actorCtxKey contextKey = "actor"

// NewAuthMiddleware resolves the bearer token into an authenticated
// actor (user id + role) and stores it in the request context. Token
// issuance is the identity provider's job; this only verifies.
func NewAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})

			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid claims", http.StatusUnauthorized)
				return
			}

			userID, ok := claims["user_id"].(float64)
			if !ok {
				http.Error(w, "user_id not found in token", http.StatusUnauthorized)
				return
			}

			roleClaim, ok := claims["role"].(string)
			if !ok {
				http.Error(w, "role not found in token", http.StatusUnauthorized)
				return
			}

			parsedRole, err := role.ParseRole(roleClaim)
			if err != nil {
				http.Error(w, "unknown role", http.StatusUnauthorized)
				return
			}

			actor := role.Actor{UserID: int64(userID), Role: parsedRole}
			ctx := context.WithValue(r.Context(), actorCtxKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated actor stored by the
// middleware.
func ActorFromContext(ctx context.Context) (role.Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey).(role.Actor)

	return actor, ok
}

// ContextWithActor is a test helper for handlers that read the actor.
func ContextWithActor(ctx context.Context, actor role.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}
