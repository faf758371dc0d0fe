// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/flypig-ai/flypig-backend/internal/models"
)

func AuditLogMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for GET requests and health checks
		if c.Request.Method == "GET" || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		// Read request body so the action name can be recorded
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		userID, _ := c.Get("user_id")
		var userUUID *uuid.UUID
		if userID != nil {
			if uid, ok := userID.(string); ok {
				if parsed, err := uuid.Parse(uid); err == nil {
					userUUID = &parsed
				}
			}
		}

		action := c.Request.Method + " " + c.Request.URL.Path
		payload := models.JSONB{
			"status":      c.Writer.Status(),
			"duration_ms": duration.Milliseconds(),
		}
		if len(requestBody) > 0 {
			var envelope struct {
				Action string `json:"action"`
			}
			if json.Unmarshal(requestBody, &envelope) == nil && envelope.Action != "" {
				action = envelope.Action
				payload["endpoint"] = c.Request.URL.Path
			}
		}

		auditLog := &models.AuditLog{
			UserID:    userUUID,
			Action:    action,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Payload:   payload,
		}

		// Save audit log asynchronously
		go func() {
			if err := db.Create(auditLog).Error; err != nil {
				logrus.WithError(err).Error("Failed to create audit log")
			}
		}()

		logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"action":   action,
			"status":   c.Writer.Status(),
			"duration": duration.Milliseconds(),
			"ip":       c.ClientIP(),
			"user_id":  userID,
		}).Info("Request processed")
	}
}

func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return ""
	})
}
