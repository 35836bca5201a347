package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopcapital/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		BaseURL:       server.URL,
		APIVersion:    "v20.0",
	}, nil)
	c.httpClient.SetRetryCount(0)
	return c
}

func TestSendTextMessage(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	resp, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "258840000000", Body: "hi"})
	require.NoError(t, err)

	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
	assert.Equal(t, "258840000000", got["to"])
	assert.Equal(t, "hi", got["text"].(map[string]any)["body"])
}

func TestSendTextMessageAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad token","code":190}}`))
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "hi"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 190, apiErr.Code)
	assert.Equal(t, "bad token", apiErr.Message)
}

func TestSendTextMessageTruncatesLongBodies(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: strings.Repeat("é", maxBodyRunes+10)})
	require.NoError(t, err)

	body := got["text"].(map[string]any)["body"].(string)
	assert.Equal(t, maxBodyRunes, len([]rune(body)))
}

func TestSendTextMessageRequiresRecipient(t *testing.T) {
	c := NewClient(config.WhatsAppConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "hi"})
	assert.Error(t, err)
}

func TestSendTextMessageRetriesOnlyUnavailableStatuses(t *testing.T) {
	cases := map[int]int32{
		http.StatusInternalServerError: 1,
		http.StatusBadRequest:          1,
		http.StatusBadGateway:          3,
		http.StatusServiceUnavailable:  3,
		http.StatusGatewayTimeout:      3,
	}

	for status, wantAttempts := range cases {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var attempts atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":{"message":"try later"}}`))
			})
			c.httpClient.
				SetRetryCount(2).
				SetRetryWaitTime(time.Millisecond).
				SetRetryMaxWaitTime(5 * time.Millisecond)

			_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "hi"})

			assert.Error(t, err)
			assert.Equal(t, wantAttempts, attempts.Load())
		})
	}
}
