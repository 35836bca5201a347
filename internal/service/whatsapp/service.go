package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/config"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
	"github.com/mamadbah2/shopcapital/internal/service/commands"
	client "github.com/mamadbah2/shopcapital/pkg/clients/whatsapp"
)

const (
	sendTimeout = 10 * time.Second
	redelivery  = 24 * time.Hour
)

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	tracker    *DeliveryTracker
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		tracker:    NewDeliveryTracker(redelivery),
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if !s.tracker.FirstDelivery(msg.ID) {
					s.logger.Debug("skipping redelivered message", zap.String("message_id", msg.ID))
					continue
				}
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if !s.allowedSender(msg.From) {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}

	text := extractMessageText(msg)
	if text == "" {
		return errors.New("empty message body")
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		reply = replyForError(err)
		s.logger.Debug("command rejected", zap.String("command", string(cmd.Type)), zap.Error(err))
	}

	return s.send(ctx, msg.From, reply, false)
}

// allowedSender accepts everyone when no allow-list is configured.
func (s *MetaWhatsAppService) allowedSender(from string) bool {
	if len(s.cfg.AllowedSenders) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedSenders {
		if allowed == from {
			return true
		}
	}
	return false
}

func replyForError(err error) string {
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Unknown command. Send /help to see what I understand."
	case errors.Is(err, commands.ErrInvalidArguments):
		return "I could not read that. Example: /sale 2 10 25 rice or /expense op 15 rent."
	case errors.Is(err, models.ErrValidation):
		return "Rejected: " + err.Error()
	default:
		return "Something went wrong while saving. Please try again."
	}
}

// SendOutbound lets internal operators and the scheduler push notifications.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
