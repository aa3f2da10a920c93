package notify

import (
	"context"
	"fmt"
	"time"

	"print-pricing/internal/catalog"
	"print-pricing/internal/config"
	"print-pricing/internal/logger"
	"print-pricing/internal/models"

	"github.com/go-resty/resty/v2"
)

const slackAPIBase = "https://slack.com/api"

// NotificationError wraps a failed chat delivery.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string { return "slack notification: " + e.Err.Error() }

func (e *NotificationError) Unwrap() error { return e.Err }

// SlackNotifier posts digests through an incoming webhook, or through
// chat.postMessage when a bot token is configured. No retries.
type SlackNotifier struct {
	webhookURL string
	token      string
	channelID  string
	apiBase    string
	client     *resty.Client
	log        *logger.Logger
}

func NewSlackNotifier(cfg *config.Config, log *logger.Logger) *SlackNotifier {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetHeader("Content-Type", "application/json; charset=utf-8")
	return &SlackNotifier{
		webhookURL: cfg.SlackWebhookURL,
		token:      cfg.SlackToken,
		channelID:  cfg.SlackChannelID,
		apiBase:    slackAPIBase,
		client:     client,
		log:        log.With("component", "slack"),
	}
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (n *SlackNotifier) Notify(ctx context.Context, category catalog.ProductCategory, diffs []models.PriceDiff) error {
	warnUnreadable(n.log, category, diffs)
	msg, listed := FormatDigest(category, diffs)
	if listed == 0 {
		n.log.Info("No effective price change, skipping notification", "product", category.String(), "diffs", len(diffs))
		return nil
	}
	n.log.Info("Sending price change digest", "product", category.String(), "changes", listed)
	if err := n.Send(ctx, msg); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}

// Send posts a raw text message.
func (n *SlackNotifier) Send(ctx context.Context, text string) error {
	if n.token != "" {
		var out slackResponse
		resp, err := n.client.R().
			SetContext(ctx).
			SetAuthToken(n.token).
			SetBody(map[string]string{"channel": n.channelID, "text": text}).
			SetResult(&out).
			Post(n.apiBase + "/chat.postMessage")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("chat.postMessage: status %d", resp.StatusCode())
		}
		if !out.OK {
			return fmt.Errorf("chat.postMessage: %s", out.Error)
		}
		return nil
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		Post(n.webhookURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// LogNotifier writes digests to the log when no Slack destination is set.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notify")}
}

func (n *LogNotifier) Notify(_ context.Context, category catalog.ProductCategory, diffs []models.PriceDiff) error {
	warnUnreadable(n.log, category, diffs)
	msg, listed := FormatDigest(category, diffs)
	if listed > 0 {
		n.log.Info("Price change digest", "product", category.String(), "changes", listed, "message", msg)
	}
	return nil
}

func warnUnreadable(log *logger.Logger, category catalog.ProductCategory, diffs []models.PriceDiff) {
	for _, key := range UnreadableKeys(diffs) {
		log.Warn("Unreadable composite key in price diff", "product", category.String(), "key", key)
	}
}

// Notifier is what the registrar consumes.
type Notifier interface {
	Notify(ctx context.Context, category catalog.ProductCategory, diffs []models.PriceDiff) error
}

// New picks Slack when a webhook or token is configured, the log otherwise.
func New(cfg *config.Config, log *logger.Logger) Notifier {
	if cfg.SlackToken != "" || cfg.SlackWebhookURL != "" {
		return NewSlackNotifier(cfg, log)
	}
	return NewLogNotifier(log)
}
