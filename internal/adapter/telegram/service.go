package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"botdash/internal/domain"
	"botdash/internal/utils"
)

const defaultAPIURL = "https://api.telegram.org"

// NotificationService delivers operator notifications to a Telegram chat.
// It is a no-op when the bot token or chat id is missing.
type NotificationService struct {
	botToken   string
	chatID     string
	enabled    bool
	apiURL     string
	location   *time.Location
	httpClient *http.Client
	log        *logrus.Entry
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Option customises a NotificationService
type Option func(*NotificationService)

// WithAPIURL points the service at a different Bot API host
func WithAPIURL(url string) Option {
	return func(s *NotificationService) { s.apiURL = strings.TrimRight(url, "/") }
}

// WithLocation sets the timezone used when formatting dates
func WithLocation(loc *time.Location) Option {
	return func(s *NotificationService) { s.location = loc }
}

func NewNotificationService(botToken, chatID string, log *logrus.Entry, opts ...Option) *NotificationService {
	s := &NotificationService{
		botToken: botToken,
		chatID:   chatID,
		enabled:  botToken != "" && chatID != "",
		apiURL:   defaultAPIURL,
		location: time.UTC,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.WithField("component", "telegram"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.enabled {
		s.log.Info("Telegram not configured, notifications disabled")
	}
	return s
}

// Enabled reports whether messages are actually sent
func (s *NotificationService) Enabled() bool {
	return s.enabled
}

// SendSubscriptionReminder warns that a subscription is about to expire
func (s *NotificationService) SendSubscriptionReminder(sub domain.Subscription, daysLeft int) error {
	if !s.enabled {
		return nil
	}

	name := sub.PackageName
	if name == "" {
		name = sub.PackageID.String()
	}

	message := fmt.Sprintf(
		"⏰ *SUBSCRIPTION EXPIRING*\n\n"+
			"👤 User: `%s`\n"+
			"📦 Package: `%s`\n"+
			"━━━━━━━━━━━━━━━━━\n"+
			"📅 Ends: `%s`\n"+
			"⌛ Days left: `%d`",
		sub.UserID,
		name,
		utils.FormatLocal(sub.EndDate, s.location),
		daysLeft,
	)

	return s.sendMessage(message)
}

// SendSignalFailures reports the accounts that failed to process a signal
func (s *NotificationService) SendSignalFailures(signal domain.Signal) error {
	if !s.enabled {
		return nil
	}

	processed, failed := signal.Counts()
	if failed == 0 {
		return nil
	}

	var b strings.Builder
	for _, o := range signal.Outcomes {
		if o.Status != domain.OutcomeFailed {
			continue
		}
		reason := o.Error
		if reason == "" {
			reason = "unknown error"
		}
		fmt.Fprintf(&b, "• `%s`: %s\n", o.AccountID, reason)
	}

	message := fmt.Sprintf(
		"❌ *SIGNAL FAILURES*\n\n"+
			"📡 Source: `%s`\n"+
			"📊 %s `%s`\n"+
			"🕒 Time: `%s`\n"+
			"━━━━━━━━━━━━━━━━━\n"+
			"✅ Processed: `%d`  ❌ Failed: `%d`\n\n%s",
		signal.Source,
		signal.Action,
		signal.Instrument,
		utils.FormatLocal(signal.Timestamp, s.location),
		processed,
		failed,
		b.String(),
	)

	return s.sendMessage(message)
}

// sendMessage sends a message to Telegram using the Bot API
func (s *NotificationService) sendMessage(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.botToken)

	payload := telegramMessage{
		ChatID:    s.chatID,
		Text:      text,
		ParseMode: "Markdown",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	resp, err := s.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
