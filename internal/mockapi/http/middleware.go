package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-Id"

	ctxRequestID = "request_id"
	ctxUserID    = "user_id"

	anonymousUser = "anonymous"
)

// RequestID ensures every request has a stable id, echoes it in the
// response and logs method, path, status and latency.
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if strings.TrimSpace(rid) == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Writer.Header().Set(headerRequestID, rid)

		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// OptionalUser identifies the caller without enforcing auth: a bearer token
// maps to a stable user id, then X-User-Id, then "anonymous".
// Use this ONLY for development/testing.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := ""
		if token := bearerToken(c); token != "" {
			sum := sha256.Sum256([]byte(token))
			uid = "tok_" + hex.EncodeToString(sum[:8])
		}
		if uid == "" {
			uid = strings.TrimSpace(c.GetHeader("X-User-Id"))
		}
		if uid == "" {
			uid = anonymousUser
		}
		c.Set(ctxUserID, uid)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func userID(c *gin.Context) string {
	if uid := c.GetString(ctxUserID); uid != "" {
		return uid
	}
	return anonymousUser
}
