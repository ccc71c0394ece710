package container

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"loc-portal/internal/config"
	"loc-portal/internal/domain"
	"loc-portal/internal/guard"
	"loc-portal/internal/middleware"
	"loc-portal/internal/repository"
	"loc-portal/internal/service"
	"loc-portal/internal/service/auth"
	"loc-portal/internal/service/contact"
	"loc-portal/internal/service/mail"
	"loc-portal/internal/service/payment"
	"loc-portal/internal/service/session"
	"loc-portal/internal/service/state"
	"loc-portal/pkg/database"
	"loc-portal/pkg/logger"
	"loc-portal/pkg/redis"

	"github.com/gorilla/sessions"
)

// Services groups the application services
type Services struct {
	Sessions service.SessionStore
	Tokens   service.TokenService
	State    *state.Manager
	Contact  service.ContactSubmitter
	Mailer   service.WelcomeMailer
	Cache    *service.CacheService
	Admin    service.AdminService // nil without a database
}

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	DB          *database.PostgresDB
	Services    *Services
	Policy      *guard.RulePolicy
	Cookies     *sessions.CookieStore
}

// New creates a new dependency injection container. Redis and Postgres are
// optional: without Redis sessions live in memory and the contact form is
// not rate limited; without Postgres the admin endpoints are unavailable.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	// Initialize Redis client if Redis URL is configured
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Named("redis").Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, sessions will be kept in memory")
		} else {
			c.RedisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, sessions will be kept in memory")
	}

	// Initialize database if configured
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseReadURL)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to database, participant registry disabled")
		} else {
			c.DB = db
			logger.Info("Database connection established")
		}
	} else {
		logger.Info("Database URL not configured, participant registry disabled")
	}

	policy, err := guard.NewDefaultPolicy(cfg.PublicRoutes)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("navigation policy: %w", err)
	}
	c.Policy = policy

	services, err := c.buildServices(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Services = services

	sessionSecret := secretOrRandom(cfg.SessionSecret, "SESSION_SECRET", logger)
	c.Cookies = middleware.NewCookieStore(sessionSecret, cfg.SessionTTL, cfg.CookieSecure)

	return c, nil
}

func (c *Container) buildServices(ctx context.Context) (*Services, error) {
	cfg, log := c.Config, c.Logger

	var store service.SessionStore
	if c.RedisClient != nil {
		store = session.NewRedisStore(c.RedisClient, cfg.SessionTTL, log.Named("sessions").Logger)
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	var mailer service.WelcomeMailer
	if cfg.GmailConfigured() {
		gmailMailer, err := mail.NewGmailMailer(ctx, mail.GmailConfig{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			Sender:       cfg.GmailSender,
		}, log.Named("mail"))
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Gmail, welcome emails will only be logged")
			mailer = mail.NewLogMailer(log.Named("mail"))
		} else {
			mailer = gmailMailer
		}
	} else {
		mailer = mail.NewLogMailer(log.Named("mail"))
	}

	cache := service.NewCacheService(c.RedisClient, log.Named("cache").Logger)

	var admin *service.ParticipantService
	var recorder service.ParticipantRecorder
	if c.DB != nil {
		admin = service.NewParticipantService(repository.NewParticipantRepository(c.DB), cache, log.Named("participants").Logger)
		recorder = admin
	}

	manager, err := state.NewManager(state.Dependencies{
		Store:    store,
		Auth:     auth.NewDemoAuthenticator(cfg.AdminEmails, log.Named("auth")),
		Payments: payment.NewSimulatedProvider(cfg.PaymentLatency, log.Named("payment")),
		Mailer:   mailer,
		Recorder: recorder,
		Logger:   log.Named("state").Logger,
		Fee: state.FeeSettings{
			Amount:   cfg.FeeAmount,
			Currency: cfg.FeeCurrency,
			DueIn:    time.Duration(cfg.PaymentDueDays) * 24 * time.Hour,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("state manager: %w", err)
	}

	jwtSecret := secretOrRandom(cfg.JWTSecret, "JWT_SECRET", log)

	services := &Services{
		Sessions: store,
		Tokens:   auth.NewTokenService(jwtSecret, cfg.JWTIssuer, cfg.SessionTTL, log.Named("tokens")),
		State:    manager,
		Contact: contact.NewService(contact.Config{
			WebhookURL: cfg.ContactWebhookURL,
			RateLimit:  cfg.ContactRateLimit,
			Window:     cfg.ContactRateLimitTTL,
		}, c.RedisClient, log.Named("contact")),
		Mailer: mailer,
		Cache:  cache,
	}
	if admin != nil {
		services.Admin = admin
	}
	return services, nil
}

// secretOrRandom returns secret, or a random one that does not survive a restart
func secretOrRandom(secret, name string, logger *logger.Logger) string {
	if secret != "" {
		return secret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	logger.WithField("setting", name).Warn("Secret not configured, using a random value; sessions will not survive a restart")
	return hex.EncodeToString(buf)
}

// Schedule returns the configured event window
func (c *Container) Schedule() domain.EventSchedule {
	return domain.EventSchedule{
		Name:     c.Config.EventName,
		StartsAt: c.Config.EventStartsAt,
		EndsAt:   c.Config.EventEndsAt,
	}
}

// Close releases Redis and the database pool
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// GetDB returns the database (may be nil if not configured)
func (c *Container) GetDB() *database.PostgresDB {
	return c.DB
}
