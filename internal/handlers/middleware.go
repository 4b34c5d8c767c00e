// Package handlers contains middleware for the payment service.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fitstack/reepay-payments/internal/logging"
)

// CORSMiddleware handles Cross-Origin Resource Sharing.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request and to the
// request context's log attributes.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		ctx := logging.AppendCtx(c.Request.Context(), slog.String("request_id", requestID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// ServiceAuthMiddleware validates the Bearer JWT the storefront sends when it
// asks for a checkout session. Tokens must be HS256 signed with secret.
func ServiceAuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}

	return func(c *gin.Context) {
		scheme, raw, found := strings.Cut(c.GetHeader("Authorization"), " ")
		switch {
		case scheme == "":
			unauthorized(c, "Authorization header required")
			return
		case !found || !strings.EqualFold(scheme, "Bearer"):
			unauthorized(c, "Invalid authorization format")
			return
		case len(key) == 0:
			unauthorized(c, "Service authentication is not configured")
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(raw), keyFunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			unauthorized(c, "Invalid token")
			return
		}

		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Set("service", sub)
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
		"code":    "UNAUTHORIZED",
	})
}
