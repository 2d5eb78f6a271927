package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

const RefreshTTL = 7 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

func GenerateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func NewRefreshToken(userID int64, now time.Time) (*Token, error) {
	tokenStr, err := GenerateToken(32)
	if err != nil {
		return nil, err
	}

	return &Token{
		UserID:    userID,
		Token:     tokenStr,
		ExpiresAt: now.Add(RefreshTTL),
		CreatedAt: now,
	}, nil
}

// Service issues and rotates refresh tokens. Each token is single use.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Issue(ctx context.Context, userID int64) (*Token, error) {
	t, err := NewRefreshToken(userID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Rotate consumes tokenStr and returns a fresh token for the same user.
func (s *Service) Rotate(ctx context.Context, tokenStr string) (*Token, error) {
	old, err := s.repo.Consume(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if s.now().After(old.ExpiresAt) {
		return nil, ErrExpiredToken
	}
	return s.Issue(ctx, old.UserID)
}
