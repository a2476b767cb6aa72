package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/siteoptic/audit-api/internal/config"
)

// Service sends notifications via the configured channels. Every send is
// best effort: channel failures are logged and reported back, but the
// platform never fails a request over a notification.
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// SlackMessage is the incoming-webhook payload
type SlackMessage struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks,omitempty"`
}

type SlackBlock struct {
	Type string     `json:"type"`
	Text *SlackText `json:"text,omitempty"`
}

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendDigest sends an activity digest via the configured channels
func (s *Service) SendDigest(digest *Digest) error {
	var errors []string

	if s.config.SlackWebhookURL != "" {
		if err := s.sendToSlack(s.buildDigestMessage(digest)); err != nil {
			logrus.Errorf("Failed to send Slack digest: %v", err)
			errors = append(errors, fmt.Sprintf("Slack: %v", err))
		} else {
			logrus.Info("Successfully sent digest to Slack")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(s.buildDigestSubject(digest), s.buildDigestText(digest)); err != nil {
			logrus.Errorf("Failed to send email digest: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent digest via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SendAlert sends an urgent single-event notification
func (s *Service) SendAlert(alert *Alert) error {
	if s.config.SlackWebhookURL == "" {
		logrus.Debugf("Alert dropped, no Slack webhook configured: %s", alert.Title)
		return nil
	}

	message := &SlackMessage{
		Text: fmt.Sprintf(":rotating_light: *%s*\n%s", alert.Title, alert.Message),
	}

	if err := s.sendToSlack(message); err != nil {
		logrus.Errorf("Failed to send Slack alert: %v", err)
		return err
	}

	return nil
}

func (s *Service) sendToSlack(message *SlackMessage) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.SlackWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Slack webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildDigestMessage(digest *Digest) *SlackMessage {
	header := fmt.Sprintf("Site Audit Digest - last %s", digest.Window)
	body := fmt.Sprintf(
		"*Fixes created:* %d\n*Fixes deployed:* %d\n*Reports generated:* %d\n*Sandbox audits triggered:* %d\n_Generated %s_",
		digest.FixesCreated,
		digest.FixesDeployed,
		digest.ReportsGenerated,
		digest.AuditsTriggered,
		digest.GeneratedAt.Format("2006-01-02 15:04 UTC"),
	)

	return &SlackMessage{
		Text: header,
		Blocks: []SlackBlock{
			{Type: "header", Text: &SlackText{Type: "plain_text", Text: header}},
			{Type: "section", Text: &SlackText{Type: "mrkdwn", Text: body}},
		},
	}
}

func (s *Service) buildDigestSubject(digest *Digest) string {
	return fmt.Sprintf("Site Audit Digest: %d fixes, %d reports, %d audits",
		digest.FixesCreated, digest.ReportsGenerated, digest.AuditsTriggered)
}

func (s *Service) buildDigestText(digest *Digest) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Site Audit Digest - last %s\n", digest.Window))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", digest.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))
	text.WriteString(fmt.Sprintf("Fixes created: %d\n", digest.FixesCreated))
	text.WriteString(fmt.Sprintf("Fixes deployed: %d\n", digest.FixesDeployed))
	text.WriteString(fmt.Sprintf("Reports generated: %d\n", digest.ReportsGenerated))
	text.WriteString(fmt.Sprintf("Sandbox audits triggered: %d\n", digest.AuditsTriggered))
	text.WriteString("\n---\nThis digest was generated automatically by the Site Audit API.\n")

	return text.String()
}

func (s *Service) sendEmail(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
