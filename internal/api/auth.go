package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/fbawholesale/ops-service/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates JWT tokens issued by the identity provider and
// copies the identity claims into the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Authorization header required",
				Message: "Please provide a valid authorization token",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Invalid authorization format",
				Message: "Authorization header must be in format 'Bearer <token>'",
			})
			c.Abort()
			return
		}

		tokenString := tokenParts[1]

		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Server not configured",
				Message: "JWT secret missing",
			})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Invalid token",
				Message: "The provided token is invalid or expired",
			})
			c.Abort()
			return
		}

		// Extract claims
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			c.Set("user_id", claims["user_id"])
			c.Set("email", claims["email"])
			if name, ok := claims["full_name"].(string); ok {
				c.Set("full_name", name)
			}
			// jti scopes the active-org selection to a device/session
			if jti, ok := claims["jti"].(string); ok {
				c.Set("session_id", jti)
			}
		}

		c.Next()
	}
}

// GetUserID extracts user ID from the JWT token claims
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}

	userIDStr, ok := userID.(string)
	return userIDStr, ok
}

// GetEmail extracts the email claim from the request context
func GetEmail(c *gin.Context) string {
	email, _ := c.Get("email")
	emailStr, _ := email.(string)
	return emailStr
}

// GetFullName extracts the profile name claim from the request context
func GetFullName(c *gin.Context) string {
	name, _ := c.Get("full_name")
	nameStr, _ := name.(string)
	return nameStr
}

// GetSessionID returns the token's jti when present, falling back to the
// user id. Selection persistence degrades gracefully to per-account scope
// for tokens without a session id.
func GetSessionID(c *gin.Context) string {
	if sid, exists := c.Get("session_id"); exists {
		if s, ok := sid.(string); ok && s != "" {
			return s
		}
	}
	userID, _ := GetUserID(c)
	return userID
}
