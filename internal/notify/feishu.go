package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

// ChannelFeishu names the signed group-chat webhook channel in logs and metrics.
const ChannelFeishu = "feishu"

// FeishuNotifier implements Notifier via a Feishu custom bot webhook with
// signature verification enabled.
type FeishuNotifier struct {
	sender
	webhookURL string
	secret     string
}

// NewFeishuNotifier creates a notifier for the bot at webhookURL signed with secret.
func NewFeishuNotifier(webhookURL, secret string, opts ...Option) *FeishuNotifier {
	return &FeishuNotifier{
		sender:     newSender(opts),
		webhookURL: webhookURL,
		secret:     secret,
	}
}

type feishuPayload struct {
	MsgType   string        `json:"msg_type"`
	Content   feishuContent `json:"content"`
	Timestamp int64         `json:"timestamp"`
	Sign      string        `json:"sign"`
}

type feishuContent struct {
	Text string `json:"text"`
}

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send posts msg.Body as a text message. Only the body is used.
func (n *FeishuNotifier) Send(ctx context.Context, msg Message) error {
	ts := n.nowFunc().Unix()

	body, err := n.postJSON(ctx, ChannelFeishu, n.webhookURL, feishuPayload{
		MsgType:   "text",
		Content:   feishuContent{Text: msg.Body},
		Timestamp: ts,
		Sign:      Sign(n.secret, ts),
	})
	if err != nil {
		return err
	}

	var resp feishuResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parsing feishu response: %w", err)
	}
	if resp.Code != 0 {
		return fmt.Errorf("feishu rejected message (code %d): %s", resp.Code, resp.Msg)
	}

	return nil
}

// Sign computes the webhook signature for a Unix timestamp in seconds: the
// base64 HMAC-SHA256 of an empty message keyed with "{timestamp}\n{secret}".
func Sign(secret string, timestamp int64) string {
	key := strconv.FormatInt(timestamp, 10) + "\n" + secret
	mac := hmac.New(sha256.New, []byte(key))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
