// Package mail delivers transactional email through an HTTP mail API.
package mail

import (
	"context"
	"fmt"
	"time"

	"backend-friendbook/internal/logger"

	"resty.dev/v3"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	APIURL      string
	APIKey      string
	SenderEmail string
	SenderName  string
}

type Client struct {
	client *resty.Client
	cfg    Config
}

var _ Sender = (*Client)(nil)

func NewClient(cfg Config) *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	})
	return &Client{client: client, cfg: cfg}
}

func (c *Client) Close() error {
	return c.client.Close()
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	Sender      address   `json:"sender"`
	To          []address `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	res, err := c.client.R().
		WithContext(ctx).
		SetHeader("api-key", c.cfg.APIKey).
		SetBody(sendRequest{
			Sender:      address{Email: c.cfg.SenderEmail, Name: c.cfg.SenderName},
			To:          []address{{Email: msg.To}},
			Subject:     msg.Subject,
			HTMLContent: msg.HTML,
		}).
		Post(c.cfg.APIURL)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("send mail: unexpected status %d", res.StatusCode())
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. It backs
// local runs without mail API credentials.
type LogSender struct {
	Log *logger.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Log.Info("mail not delivered, no api key configured", "to", msg.To, "subject", msg.Subject)
	return nil
}
