package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthMiddleware validates an HS256 bearer token whose "sub" claim is the
// user id, then loads the actor from the store. The role always comes from
// the store, never from the token.
func AuthMiddleware(secret string, actors domain.ActorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}
		if secret == "" {
			logger.Log.Error("JWT_SECRET is not configured; rejecting authenticated request")
			response.Error(c, http.StatusUnauthorized, "Authentication is not available", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			logger.Log.Debug("Token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}
		userID, err := uuid.Parse(sub)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid subject", nil)
			c.Abort()
			return
		}

		actor, err := actors.GetActor(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Log.ErrorContext(c.Request.Context(), "Failed to load actor", "user_id", userID, "error", err)
			}
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyActor), *actor)
		c.Set(string(domain.KeyUserID), actor.ID.String())
		c.Set(string(domain.KeyUserRole), string(actor.Role))

		c.Next()
	}
}

// CurrentActor returns the actor stored by AuthMiddleware. Unauthenticated
// requests get an actor with RoleUnknown.
func CurrentActor(c *gin.Context) domain.Actor {
	if v, ok := c.Get(string(domain.KeyActor)); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{Role: domain.RoleUnknown}
}
