package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"fleetwatch/internal/alert"
)

// Webhook request headers.
const (
	WebhookSignatureHeader = "X-Webhook-Signature"
	WebhookTimestampHeader = "X-Webhook-Timestamp"
	WebhookEventHeader     = "X-Webhook-Event"
	WebhookIDHeader        = "X-Webhook-ID"
)

// webhookPayload is the JSON body posted to the receiver.
type webhookPayload struct {
	AlertID   uint    `json:"alert_id"`
	Kind      string  `json:"kind"`
	VehicleNo string  `json:"vehicle_no"`
	Details   string  `json:"details"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	RaisedAt  int64   `json:"raised_at"`
}

// WebhookChannel posts alert notifications to a single receiver URL, signing
// each request with HMAC-SHA256 over "<timestamp>.<body>".
type WebhookChannel struct {
	url        string
	secret     string
	httpClient *http.Client
	now        func() time.Time
}

// NewWebhookChannel creates a webhook channel. secret may be empty, in which
// case requests are unsigned.
func NewWebhookChannel(url, secret string) *WebhookChannel {
	return &WebhookChannel{
		url:    url,
		secret: secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// Notify implements alert.Notifier.
func (c *WebhookChannel) Notify(ctx context.Context, n *alert.Notification) error {
	payload := webhookPayload{
		AlertID:   n.AlertID,
		Kind:      string(n.Kind),
		VehicleNo: n.VehicleNo,
		Details:   n.Details,
		Lat:       n.Lat,
		Lon:       n.Lon,
		RaisedAt:  c.now().Unix(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	timestamp := strconv.FormatInt(payload.RaisedAt, 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(WebhookTimestampHeader, timestamp)
	req.Header.Set(WebhookEventHeader, string(n.Kind))
	req.Header.Set(WebhookIDHeader, uuid.NewString())
	if c.secret != "" {
		req.Header.Set(WebhookSignatureHeader, sign(c.secret, timestamp, body))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook receiver returned %d", resp.StatusCode)
	}
	return nil
}

func sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
