package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/domain/models"
	whatsappsvc "github.com/mamadbah2/shopcapital/internal/service/whatsapp"
)

// maxWebhookBody caps inbound callback bodies; Meta batches are far smaller.
const maxWebhookBody = 1 << 20

type verifyQuery struct {
	Mode      string `form:"hub.mode"`
	Token     string `form:"hub.verify_token"`
	Challenge string `form:"hub.challenge"`
}

// WebhookHandler exposes the chat channel: Meta's verification handshake,
// inbound shop commands and the operator push endpoint.
type WebhookHandler struct {
	messaging whatsappsvc.MessagingService
	logger    *zap.Logger
}

// NewWebhookHandler constructs the HTTP adapter over the messaging service.
func NewWebhookHandler(messaging whatsappsvc.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{messaging: messaging, logger: logger}
}

// Verify echoes the hub challenge when the verify token matches.
func (h *WebhookHandler) Verify(c *gin.Context) {
	var q verifyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.String(http.StatusBadRequest, "invalid query")
		return
	}

	challenge, err := h.messaging.VerifyWebhookToken(q.Mode, q.Token, q.Challenge)
	if err != nil {
		h.logger.Warn("webhook subscription rejected", zap.String("mode", q.Mode), zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, challenge)
}

// Receive turns a webhook callback into shop commands. Only an unparsable body
// is refused; processing failures are acknowledged with 200 because Meta
// redelivers anything else.
func (h *WebhookHandler) Receive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)

	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("unparsable webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	h.logger.Debug("webhook received", zap.String("object", payload.Object), zap.Int("entries", len(payload.Entry)))

	if err := h.messaging.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("webhook processing failed", zap.Error(err))
	}

	c.Status(http.StatusOK)
}

// SendMessage pushes an operator-written text to a WhatsApp number.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to and message are required"})
		return
	}

	req.To = strings.TrimPrefix(strings.TrimSpace(req.To), "+")
	if req.To == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to and message are required"})
		return
	}

	if err := h.messaging.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("operator message not delivered", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "whatsapp provider rejected the message"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "to": req.To})
}
