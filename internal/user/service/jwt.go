package service

import (
	"time"

	"foodshare/pkg/jwt"
)

const defaultAccessTTL = 24 * time.Hour

type JWTManager struct {
	SecretKey string
	TTL       time.Duration
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		SecretKey: secret,
		TTL:       defaultAccessTTL,
	}
}

func (j *JWTManager) Generate(userID int64) (string, error) {
	return jwt.GenerateToken(j.SecretKey, userID, j.TTL)
}

func (j *JWTManager) Verify(token string) (int64, error) {
	return jwt.ParseToken(j.SecretKey, token)
}
