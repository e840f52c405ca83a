// Package handler provides HTTP handlers for the API.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prbot/prbot/internal/webhook"
)

// WebhookHandler adapts a webhook.Handler (plain net/http) into a gin
// handler function.
type WebhookHandler struct {
	inner *webhook.Handler
}

// NewWebhookHandler builds a WebhookHandler wrapping a webhook.Handler.
func NewWebhookHandler(inner *webhook.Handler) *WebhookHandler {
	return &WebhookHandler{inner: inner}
}

// HandleWebhook handles POST /webhook.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	h.inner.ServeHTTP(c.Writer, c.Request)
}
