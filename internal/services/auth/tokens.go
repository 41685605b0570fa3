package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"
)

const (
	// TokenTypeAccess marks short-lived tokens used on API requests
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks long-lived tokens used to obtain new token pairs
	TokenTypeRefresh = "refresh"

	// minSecretLength is the minimum accepted HMAC secret length
	minSecretLength = 32

	userIDClaim    = "uid"
	tokenTypeClaim = "type"
)

// Claims holds the validated contents of a token.
type Claims struct {
	UserID    uuid.UUID
	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// TokenService issues and validates HMAC-SHA256 signed JWTs.
type TokenService struct {
	signingKey      []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	clockSkew       time.Duration
	timeFunc        func() time.Time // injectable for testing
	logger          *zap.Logger
}

// NewTokenService creates a token service. The secret must be at least 32
// characters.
func NewTokenService(secret string, accessLifetime, refreshLifetime time.Duration, logger *zap.Logger) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}

	return &TokenService{
		signingKey:      []byte(secret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		clockSkew:       2 * time.Minute,
		timeFunc:        time.Now,
		logger:          logger,
	}, nil
}

// GenerateToken creates a signed access token for the user.
func (s *TokenService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(userID, TokenTypeAccess, s.accessLifetime)
}

// GenerateRefreshToken creates a signed refresh token for the user.
func (s *TokenService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(userID, TokenTypeRefresh, s.refreshLifetime)
}

func (s *TokenService) generate(userID uuid.UUID, tokenType string, lifetime time.Duration) (string, error) {
	now := s.timeFunc()

	tok, err := jwt.NewBuilder().
		Subject(userID.String()).
		IssuedAt(now).
		Expiration(now.Add(lifetime)).
		JwtID(uuid.New().String()).
		Claim(userIDClaim, userID.String()).
		Claim(tokenTypeClaim, tokenType).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build %s token: %w", tokenType, err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.signingKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("token_sign_failed",
				zap.String("token_type", tokenType),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return string(signed), nil
}

// ValidateToken validates an access token and returns its claims.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims.
func (s *TokenService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(tokenString, TokenTypeRefresh)
}

func (s *TokenService) validate(tokenString, wantType string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	tok, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.signingKey),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.timeFunc)),
		jwt.WithAcceptableSkew(s.clockSkew),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired()):
			s.logDebug("token_expired", wantType)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotYetValid()):
			s.logDebug("token_not_yet_valid", wantType)
			return nil, ErrTokenNotYetValid
		default:
			s.logDebug("token_invalid", wantType)
			return nil, ErrInvalidToken
		}
	}

	tokenType, _ := tok.Get(tokenTypeClaim)
	typeStr, _ := tokenType.(string)
	if typeStr != wantType {
		s.logDebug("token_wrong_type", wantType)
		return nil, ErrWrongTokenType
	}

	rawUID, _ := tok.Get(userIDClaim)
	uidStr, _ := rawUID.(string)
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    userID,
		TokenType: typeStr,
		Subject:   tok.Subject(),
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
		ID:        tok.JwtID(),
	}, nil
}

func (s *TokenService) logDebug(event, tokenType string) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(event, zap.String("token_type", tokenType))
}
