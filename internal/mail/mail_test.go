package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSend(t *testing.T) {
	var got sendRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL, APIKey: "key", SenderEmail: "from@example.com", SenderName: "Friendbook"})
	defer c.Close()

	err := c.Send(context.Background(), VerificationOTP("to@example.com", "123456"))
	require.NoError(t, err)
	assert.Equal(t, "key", apiKey)
	assert.Equal(t, "from@example.com", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "to@example.com", got.To[0].Email)
	assert.Equal(t, "Friendbook Account verification", got.Subject)
	assert.True(t, strings.Contains(got.HTMLContent, "123456"))
}

func TestClientSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL})
	defer c.Close()

	err := c.Send(context.Background(), ForgotPasswordOTP("to@example.com", "123456"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
