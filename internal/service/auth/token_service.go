package auth

import (
	"fmt"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	Scope         string `json:"sid"`
	Role          string `json:"role,omitempty"`
	ParticipantID string `json:"pid,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues HS256 bearer tokens that carry a client scope
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewTokenService creates a token service
func NewTokenService(secret, issuer string, ttl time.Duration, logger *logger.Logger) service.TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Issue signs a token for the scope. The record may be nil for an anonymous scope.
func (s *TokenService) Issue(scope string, record *domain.UserRecord) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	if record != nil {
		claims.Role = string(record.Role)
		claims.ParticipantID = record.ParticipantID
		claims.Subject = record.ParticipantID
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign session token")
		return "", errors.NewInternalError("Failed to issue session token", err)
	}
	return token, nil
}

// Parse verifies signature, issuer and expiry and returns the claims
func (s *TokenService) Parse(tokenString string) (*domain.SessionClaims, error) {
	if !isJWTToken(tokenString) {
		return nil, errors.NewAuthenticationError("Unrecognized token format")
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// Verify the signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.WithError(err).Debug("Rejected session token")
		return nil, errors.NewAuthenticationError("Invalid session token")
	}
	if !token.Valid || claims.Scope == "" {
		return nil, errors.NewAuthenticationError("Invalid session token")
	}

	out := &domain.SessionClaims{
		Scope:         claims.Scope,
		Role:          domain.Role(claims.Role),
		ParticipantID: claims.ParticipantID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// isJWTToken reports whether the token has exactly three dot-separated segments
func isJWTToken(token string) bool {
	if token == "" {
		return false
	}

	dotCount := 0
	for _, char := range token {
		if char == '.' {
			dotCount++
		}
	}
	return dotCount == 2
}
