package whatsapp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopcapital/internal/config"
	"github.com/mamadbah2/shopcapital/internal/domain/models"
	"github.com/mamadbah2/shopcapital/internal/service/commands"
	client "github.com/mamadbah2/shopcapital/pkg/clients/whatsapp"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) SendTextMessage(ctx context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.SendTextMessageResponse), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	args := m.Called(ctx, cmd, sender)
	return args.String(0), args.Error(1)
}

func textPayload(id, from, body string) models.WebhookPayload {
	return models.WebhookPayload{
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{
				Value: models.WebhookValue{
					Messages: []models.InboundMessage{{ID: id, From: from, Type: "text", Text: &models.TextContent{Body: body}}},
				},
			}},
		}},
	}
}

func bodyIs(body string) interface{} {
	return mock.MatchedBy(func(req client.SendTextMessageRequest) bool { return req.Body == body })
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, nil, nil, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "42")
	assert.Error(t, err)
}

func TestHandleWebhookRepliesWithDispatcherOutput(t *testing.T) {
	wa := new(MockClient)
	dispatcher := new(MockDispatcher)
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, dispatcher, nil)
	ctx := context.Background()

	dispatcher.On("HandleCommand", ctx, mock.MatchedBy(func(cmd models.Command) bool {
		return cmd.Type == models.CommandToday
	}), "2588").Return("daily summary", nil).Once()
	wa.On("SendTextMessage", mock.Anything, bodyIs("daily summary")).Return(&client.SendTextMessageResponse{}, nil).Once()

	require.NoError(t, svc.HandleWebhook(ctx, textPayload("m1", "2588", "/today")))

	dispatcher.AssertExpectations(t)
	wa.AssertExpectations(t)
}

func TestHandleWebhookSkipsRedelivery(t *testing.T) {
	wa := new(MockClient)
	dispatcher := new(MockDispatcher)
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, dispatcher, nil)
	ctx := context.Background()

	dispatcher.On("HandleCommand", ctx, mock.Anything, "2588").Return("ok", nil).Once()
	wa.On("SendTextMessage", mock.Anything, mock.Anything).Return(&client.SendTextMessageResponse{}, nil).Once()

	payload := textPayload("m1", "2588", "/sale 1 1 2 soap")
	require.NoError(t, svc.HandleWebhook(ctx, payload))
	require.NoError(t, svc.HandleWebhook(ctx, payload))

	dispatcher.AssertNumberOfCalls(t, "HandleCommand", 1)
}

func TestHandleWebhookTranslatesErrors(t *testing.T) {
	cases := map[string]error{
		"Unknown command":  commands.ErrUnsupportedCommand,
		"I could not read": commands.ErrInvalidArguments,
		"Rejected":         models.ErrInvalidQuantity,
		"went wrong":       fmt.Errorf("save sale: %w", assert.AnError),
	}

	for prefix, dispatchErr := range cases {
		t.Run(prefix, func(t *testing.T) {
			wa := new(MockClient)
			dispatcher := new(MockDispatcher)
			svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, dispatcher, nil)

			dispatcher.On("HandleCommand", mock.Anything, mock.Anything, mock.Anything).Return("", dispatchErr)
			wa.On("SendTextMessage", mock.Anything, mock.MatchedBy(func(req client.SendTextMessageRequest) bool {
				return assert.Contains(t, req.Body, prefix)
			})).Return(&client.SendTextMessageResponse{}, nil).Once()

			require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("m-"+prefix, "2588", "/x")))
			wa.AssertExpectations(t)
		})
	}
}

func TestHandleWebhookIgnoresUnknownSenders(t *testing.T) {
	wa := new(MockClient)
	dispatcher := new(MockDispatcher)
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{AllowedSenders: []string{"owner"}}, wa, dispatcher, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("m1", "stranger", "/today")))

	dispatcher.AssertNotCalled(t, "HandleCommand", mock.Anything, mock.Anything, mock.Anything)
	wa.AssertNotCalled(t, "SendTextMessage", mock.Anything, mock.Anything)
}

func TestHandleWebhookEmptyBody(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, new(MockClient), new(MockDispatcher), nil)
	payload := textPayload("m1", "2588", "")
	payload.Entry[0].Changes[0].Value.Messages[0].Text = nil

	assert.Error(t, svc.HandleWebhook(context.Background(), payload))
}

func TestDeliveryTrackerExpires(t *testing.T) {
	tracker := NewDeliveryTracker(time.Minute)
	now := time.Date(2024, time.June, 18, 10, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	assert.True(t, tracker.FirstDelivery("m1"))
	assert.False(t, tracker.FirstDelivery("m1"))

	now = now.Add(2 * time.Minute)
	assert.True(t, tracker.FirstDelivery("m1"))
	assert.True(t, tracker.FirstDelivery(""))
	assert.True(t, tracker.FirstDelivery(""))
}
