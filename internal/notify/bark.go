package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// ChannelBark names the push-token relay channel in logs and metrics.
const ChannelBark = "bark"

// BarkNotifier implements Notifier via a Bark push server.
type BarkNotifier struct {
	sender
	serviceURL string
	deviceKey  string
}

// NewBarkNotifier creates a notifier that pushes to deviceKey through the
// Bark server at serviceURL (for example https://api.day.app/push).
func NewBarkNotifier(serviceURL, deviceKey string, opts ...Option) *BarkNotifier {
	return &BarkNotifier{
		sender:     newSender(opts),
		serviceURL: serviceURL,
		deviceKey:  deviceKey,
	}
}

type barkPayload struct {
	DeviceKey string `json:"device_key"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category,omitempty"`
	Group     string `json:"group,omitempty"`
	Sound     string `json:"sound,omitempty"`
}

type barkResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send pushes msg to the configured device.
func (b *BarkNotifier) Send(ctx context.Context, msg Message) error {
	body, err := b.postJSON(ctx, ChannelBark, b.serviceURL, barkPayload{
		DeviceKey: b.deviceKey,
		Title:     msg.Title,
		Body:      msg.Body,
		Category:  msg.Category,
		Group:     msg.Group,
		Sound:     msg.Sound,
	})
	if err != nil {
		return err
	}

	var resp barkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		b.log.DebugContext(ctx, "bark response", "body", string(body))
		return nil
	}

	// Bark mirrors the HTTP status in the body; anything else is a rejection.
	if resp.Code != 0 && resp.Code != 200 {
		return fmt.Errorf("bark rejected push (code %d): %s", resp.Code, resp.Message)
	}

	b.log.DebugContext(ctx, "bark response", "code", resp.Code, "message", resp.Message)
	return nil
}
