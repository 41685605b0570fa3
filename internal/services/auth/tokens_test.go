package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour, nil)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenService("too-short", time.Minute, time.Hour, nil); err == nil {
		t.Error("NewTokenService() with short secret, want error")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, userID)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %v, want %v", claims.UserID, userID)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, TokenTypeAccess)
	}
	if claims.Subject != userID.String() {
		t.Errorf("Subject = %q, want %q", claims.Subject, userID.String())
	}
	if claims.ID == "" {
		t.Error("ID is empty, want unique token ID")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	token, err := svc.GenerateRefreshToken(ctx, userID)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := svc.ValidateRefreshToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, TokenTypeRefresh)
	}
}

func TestValidateToken_WrongType(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	refresh, err := svc.GenerateRefreshToken(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	if _, err := svc.ValidateToken(ctx, refresh); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("ValidateToken(refresh token) error = %v, want ErrWrongTokenType", err)
	}

	access, err := svc.GenerateToken(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := svc.ValidateRefreshToken(ctx, access); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("ValidateRefreshToken(access token) error = %v, want ErrWrongTokenType", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.timeFunc = func() time.Time { return issued }

	token, err := svc.GenerateToken(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Jump past lifetime plus clock skew.
	svc.timeFunc = func() time.Time { return issued.Add(time.Hour) }

	if _, err := svc.ValidateToken(ctx, token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateToken_Tampered(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tampered := token[:len(token)-4] + "xxxx"
	if _, err := svc.ValidateToken(ctx, tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken(tampered) error = %v, want ErrInvalidToken", err)
	}

	if _, err := svc.ValidateToken(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken(garbage) error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateToken_WrongKey(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	other, err := NewTokenService(strings.Repeat("z", 32), 15*time.Minute, 24*time.Hour, nil)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	ctx := context.Background()

	token, err := other.GenerateToken(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := svc.ValidateToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken(foreign key) error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateToken_Missing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	if _, err := svc.ValidateToken(context.Background(), ""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("ValidateToken(\"\") error = %v, want ErrMissingToken", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Error("hash equals plaintext")
	}

	if err := ComparePassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("ComparePassword(correct) error = %v", err)
	}
	if err := ComparePassword(hash, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ComparePassword(wrong) error = %v, want ErrInvalidCredentials", err)
	}
}
