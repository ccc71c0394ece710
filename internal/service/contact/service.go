package contact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
	"loc-portal/pkg/redis"
	"loc-portal/pkg/retry"
	"loc-portal/pkg/utils"
)

const maxMessageLength = 5000

// Config controls where contact messages go and how often a client may send one
type Config struct {
	WebhookURL string
	RateLimit  int           // messages per window per client IP, 0 disables
	Window     time.Duration // rate limit window
	Retry      *retry.Config
}

// Service forwards contact form messages to an external workflow endpoint
type Service struct {
	config      Config
	httpClient  *http.Client
	redisClient *redis.Client // nil disables rate limiting
	logger      *logger.Logger
}

// NewService creates the contact form service
func NewService(cfg Config, redisClient *redis.Client, logger *logger.Logger) service.ContactSubmitter {
	if cfg.Window <= 0 {
		cfg.Window = redis.TTLContactRateLimit
	}
	return &Service{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		redisClient: redisClient,
		logger:      logger,
	}
}

// Submit validates the message, applies the per-IP limit and posts it.
// Only the HTTP status of the endpoint is consumed.
func (s *Service) Submit(ctx context.Context, clientIP string, msg domain.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Phone = strings.TrimSpace(msg.Phone)
	msg.Message = strings.TrimSpace(msg.Message)

	if err := validate(msg); err != nil {
		return err
	}
	if msg.Phone != "" {
		msg.Phone, _ = utils.NormalizePhoneNumber(msg.Phone)
	}

	if err := s.checkRateLimit(ctx, clientIP); err != nil {
		return err
	}

	if s.config.WebhookURL == "" {
		s.logger.WithField("sender_domain", senderDomain(msg.Email)).Info("Contact message accepted (no webhook configured)")
		return nil
	}

	jsonBody, err := json.Marshal(msg)
	if err != nil {
		return errors.NewInternalError("Failed to encode contact message", err)
	}

	err = retry.DoIfRetryable(ctx, s.config.Retry, func() error {
		return s.post(ctx, jsonBody)
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to deliver contact message")
		if appErr, ok := errors.AsAppError(err); ok {
			return appErr
		}
		return errors.NewExternalError("Failed to send message", err)
	}

	s.logger.WithField("sender_domain", senderDomain(msg.Email)).Info("Contact message delivered")
	return nil
}

func (s *Service) post(ctx context.Context, jsonBody []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonBody))
	if err != nil {
		return errors.NewInternalError("Failed to create contact request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.NewExternalError("Failed to reach contact endpoint", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := errors.NewExternalError(fmt.Sprintf("Contact endpoint returned status %d", resp.StatusCode), nil)
		// Client errors will not succeed on a retry
		appErr.Retryable = resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return appErr
	}
	return nil
}

// checkRateLimit counts messages per hashed client IP in a fixed window
func (s *Service) checkRateLimit(ctx context.Context, clientIP string) error {
	if s.redisClient == nil || s.config.RateLimit <= 0 || clientIP == "" {
		return nil
	}

	key := s.redisClient.KeyBuilder.KeyContactRateLimit(createIPHash(clientIP))

	count, err := s.redisClient.Incr(ctx, key)
	if err != nil {
		// Fail open: the form stays usable when Redis is down
		s.logger.WithError(err).Warn("Failed to increment contact rate limit counter")
		return nil
	}

	// Set expiry on first request
	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, s.config.Window); err != nil {
			s.logger.WithError(err).Warn("Failed to set rate limit key expiry")
		}
	}

	if count > int64(s.config.RateLimit) {
		s.logger.WithField("request_count", count).Warn("Contact rate limit exceeded")
		return errors.NewRateLimitError("Too many messages. Please try again later.")
	}
	return nil
}

func validate(msg domain.ContactMessage) error {
	details := map[string]interface{}{}
	if msg.Name == "" {
		details["name"] = "required"
	}
	if msg.Email == "" {
		details["email"] = "required"
	} else if !domain.IsValidEmail(msg.Email) {
		details["email"] = "invalid"
	}
	if msg.Phone != "" && !utils.IsValidPhoneNumber(msg.Phone) {
		details["phone"] = "invalid"
	}
	if msg.Message == "" {
		details["message"] = "required"
	} else if len(msg.Message) > maxMessageLength {
		details["message"] = fmt.Sprintf("must be at most %d characters", maxMessageLength)
	}
	if len(details) > 0 {
		return errors.NewValidationError("Invalid contact form", details)
	}
	return nil
}

// createIPHash creates a hash for IP address (for rate limiting privacy)
func createIPHash(ipAddress string) string {
	hash := sha256.Sum256([]byte(ipAddress))
	return fmt.Sprintf("%x", hash)[:16]
}

func senderDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[at+1:]
	}
	return ""
}
