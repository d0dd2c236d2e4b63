package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/resend/resend-go/v2"
	"github.com/sentinel-labs/sentinel/internal/config"
	"github.com/sentinel-labs/sentinel/internal/models"
)

// ActionConfig is the decoded shape of a rule's action_config JSON: the
// notification targets to hit when the rule fires.
type ActionConfig struct {
	Emails   []string `json:"emails,omitempty"`
	Webhooks []string `json:"webhooks,omitempty"`
}

// NotifyService dispatches alert events to the notification targets in a
// rule's action config. Per-target failures are logged and the remaining
// targets still run.
type NotifyService struct {
	client *resty.Client
	emails *resend.Client
	from   string
	logger *log.Logger
}

// NewNotifyService creates a new notify service. Email delivery is only
// enabled when a resend API key is configured; webhooks always work.
func NewNotifyService(cfg config.NotificationsConfig) *NotifyService {
	s := &NotifyService{
		client: resty.New().SetTimeout(10 * time.Second),
		from:   cfg.FromAddress,
		logger: log.New(log.Writer(), "[Notify] ", log.LstdFlags),
	}
	if cfg.ResendAPIKey != "" {
		s.emails = resend.NewClient(cfg.ResendAPIKey)
	}
	return s
}

// Dispatch sends the event to every target configured on the rule.
func (s *NotifyService) Dispatch(rule models.AlertRule, event models.AlertEvent) error {
	targets, err := decodeActionConfig(rule.ActionConfig)
	if err != nil {
		return fmt.Errorf("invalid action config for rule %d: %w", rule.ID, err)
	}

	for _, url := range targets.Webhooks {
		if err := s.sendWebhook(url, event); err != nil {
			s.logger.Printf("Failed to deliver webhook to %s: %v", url, err)
		}
	}
	if len(targets.Emails) > 0 {
		if err := s.sendEmail(targets.Emails, rule, event); err != nil {
			s.logger.Printf("Failed to deliver email for rule %d: %v", rule.ID, err)
		}
	}
	return nil
}

func (s *NotifyService) sendWebhook(url string, event models.AlertEvent) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(url)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *NotifyService) sendEmail(to []string, rule models.AlertRule, event models.AlertEvent) error {
	if s.emails == nil {
		s.logger.Printf("Email delivery not configured; skipping %d recipient(s) for rule %d", len(to), rule.ID)
		return nil
	}

	_, err := s.emails.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      to,
		Subject: fmt.Sprintf("[%s] %s", strings.ToUpper(event.Importance), rule.Name),
		Text:    formatEmailBody(event),
	})
	if err != nil {
		return fmt.Errorf("resend API request failed: %w", err)
	}
	return nil
}

func formatEmailBody(event models.AlertEvent) string {
	var sb strings.Builder
	sb.WriteString("Sentinel Alert\n\n")
	sb.WriteString(fmt.Sprintf("Ticker: %s\n", event.DisplayTicker()))
	sb.WriteString(fmt.Sprintf("Level: %s\n", strings.ToUpper(event.Importance)))
	sb.WriteString(fmt.Sprintf("Message: %s\n", event.Message))
	sb.WriteString(fmt.Sprintf("Time: %s", event.Timestamp.Format("2006-01-02 15:04:05")))
	return sb.String()
}

func decodeActionConfig(raw string) (*ActionConfig, error) {
	if raw == "" {
		return &ActionConfig{}, nil
	}
	var cfg ActionConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
