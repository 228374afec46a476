package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OperatorToken represents a validated dashboard session token
type OperatorToken struct {
	OperatorID string
	TokenID    string
	ExpiresAt  time.Time
}

// TokenSignerService generates and validates bearer tokens for
// dashboard sessions
type TokenSignerService struct {
	secretKey []byte
}

func NewTokenSignerService(secretKey []byte) *TokenSignerService {
	return &TokenSignerService{secretKey: secretKey}
}

// GenerateToken issues a signed session token for an operator
func (s *TokenSignerService) GenerateToken(operatorID string, ttl time.Duration) (string, error) {
	tokenID := uuid.New().String()
	now := time.Now()

	claims := jwt.MapClaims{
		"operator_id": operatorID,
		"jti":         tokenID,
		"exp":         now.Add(ttl).Unix(),
		"iat":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a bearer token and extracts its claims
func (s *TokenSignerService) ValidateToken(tokenString string) (*OperatorToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	operatorID, ok := (*claims)["operator_id"].(string)
	if !ok {
		return nil, errors.New("missing or invalid operator_id claim")
	}

	tokenID, ok := (*claims)["jti"].(string)
	if !ok {
		return nil, errors.New("missing or invalid jti claim")
	}

	expFloat, ok := (*claims)["exp"].(float64)
	if !ok {
		return nil, errors.New("missing or invalid exp claim")
	}
	expiresAt := time.Unix(int64(expFloat), 0)

	if time.Now().After(expiresAt) {
		return nil, errors.New("token expired")
	}

	return &OperatorToken{
		OperatorID: operatorID,
		TokenID:    tokenID,
		ExpiresAt:  expiresAt,
	}, nil
}
