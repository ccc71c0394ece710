package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const welcomeSubject = "Welcome to League of Coders!"

// LogMailer only logs the welcome email. Used when Gmail is not configured.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(logger *logger.Logger) service.WelcomeMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendWelcome(_ context.Context, msg domain.WelcomeEmail) error {
	if strings.TrimSpace(msg.Email) == "" {
		return errors.NewValidationError("Recipient email is required", nil)
	}
	m.logger.WithFields(map[string]interface{}{
		"recipient_domain": emailDomain(msg.Email),
		"subject":          welcomeSubject,
	}).Info("Simulating welcome email")
	return nil
}

// GmailConfig holds the OAuth client and refresh token of the sending account
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Sender       string
}

// GmailMailer sends the welcome email through the Gmail API as Sender
type GmailMailer struct {
	sender string
	svc    *gmail.Service
	logger *logger.Logger
}

// NewGmailMailer builds a Gmail client that refreshes its own access tokens
func NewGmailMailer(ctx context.Context, cfg GmailConfig, logger *logger.Logger) (service.WelcomeMailer, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken, TokenType: "Bearer"}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		logger.WithError(err).Error("Failed to create Gmail service")
		return nil, errors.NewInternalError("Failed to initialize Gmail service", err)
	}

	return &GmailMailer{sender: cfg.Sender, svc: svc, logger: logger}, nil
}

func (m *GmailMailer) SendWelcome(ctx context.Context, msg domain.WelcomeEmail) error {
	if strings.TrimSpace(msg.Email) == "" {
		return errors.NewValidationError("Recipient email is required", nil)
	}

	raw := buildWelcomeMessage(m.sender, msg)
	_, err := m.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.RawURLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		m.logger.WithError(err).WithField("recipient_domain", emailDomain(msg.Email)).Error("Failed to send welcome email")
		return errors.NewExternalError("Failed to send welcome email", err)
	}

	m.logger.WithField("recipient_domain", emailDomain(msg.Email)).Info("Welcome email sent")
	return nil
}

// buildWelcomeMessage renders an RFC 2822 message
func buildWelcomeMessage(sender string, msg domain.WelcomeEmail) []byte {
	name := strings.TrimSpace(msg.FirstName + " " + msg.LastName)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	if name != "" {
		fmt.Fprintf(&b, "To: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", name), msg.Email)
	} else {
		fmt.Fprintf(&b, "To: %s\r\n", msg.Email)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", welcomeSubject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")

	greeting := msg.FirstName
	if greeting == "" {
		greeting = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", greeting)
	b.WriteString("Thanks for registering for League of Coders. Your participant dashboard is ready:\r\n")
	b.WriteString("form your team, pay the registration fee and find the event resources there.\r\n\r\n")
	b.WriteString("See you at the hackathon!\r\n")
	b.WriteString("The League of Coders team\r\n")

	return []byte(b.String())
}

// emailDomain keeps addresses out of the logs
func emailDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[at+1:]
	}
	return ""
}
