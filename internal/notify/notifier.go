// Package notify defines the notification interface, the push channels
// that implement it, and the dispatcher that fans a message out to every
// configured target.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Defaults applied to every outgoing message.
const (
	DefaultTitle    = "Apple Store Monitor"
	DefaultCategory = "Apple Store Monitor"
	DefaultGroup    = "Apple Monitor"
)

// Message is a single notification. Channels use the fields they support
// and ignore the rest.
type Message struct {
	Title    string
	Body     string
	Category string
	Group    string
	Sound    string
}

// NewMessage returns a message carrying body with the standard title,
// category and group.
func NewMessage(body, sound string) Message {
	return Message{
		Title:    DefaultTitle,
		Body:     body,
		Category: DefaultCategory,
		Group:    DefaultGroup,
		Sound:    sound,
	}
}

// Notifier delivers a message on one channel.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

const defaultTimeout = 10 * time.Second

// sender holds the HTTP plumbing shared by webhook channels.
type sender struct {
	client  *http.Client
	nowFunc func() time.Time
	log     *slog.Logger
}

// Option configures a channel notifier.
type Option func(*sender)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *sender) {
		s.client = c
	}
}

// WithLogger sets the logger channel responses are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *sender) {
		s.log = l
	}
}

// WithNowFunc overrides the clock used for signed timestamps.
func WithNowFunc(f func() time.Time) Option {
	return func(s *sender) {
		s.nowFunc = f
	}
}

func newSender(opts []Option) sender {
	s := sender{
		client:  &http.Client{Timeout: defaultTimeout},
		nowFunc: time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// postJSON sends payload to url and returns the response body. Non-2xx
// statuses are returned as errors naming the channel.
func (s *sender) postJSON(ctx context.Context, channel, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", channel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", channel, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending %s request: %w", channel, err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s rate limited (429)", channel)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if readErr != nil {
			return nil, fmt.Errorf("%s returned %d (body unreadable)", channel, resp.StatusCode)
		}
		return nil, fmt.Errorf("%s returned %d: %s", channel, resp.StatusCode, respBody)
	}

	if readErr != nil {
		return nil, fmt.Errorf("reading %s response: %w", channel, readErr)
	}

	return respBody, nil
}
