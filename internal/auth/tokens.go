package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Действия, для которых выдаются одноразовые по назначению токены
const (
	ActionSubmitApplication = "submit_application"
	ActionAdmin             = "admin_action"
)

const (
	kindSession = "session"
	kindAction  = "action"
	issuer      = "greenjobs"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongAction  = errors.New("token issued for another action")
)

// Claims - сессия администратора
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// ActionClaims - короткоживущий токен действия (форма, админ-действия).
// Subject привязывает токен к администратору; для формы он пустой.
type ActionClaims struct {
	Action string `json:"action"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет HS256 токены
type TokenManager struct {
	secret    []byte
	ttl       time.Duration
	actionTTL time.Duration
	now       func() time.Time
}

func NewTokenManager(secret string, ttl, actionTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		ttl:       ttl,
		actionTTL: actionTTL,
		now:       time.Now,
	}
}

// GenerateToken выпускает токен сессии
func (m *TokenManager) GenerateToken(userID, email, role string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Kind:   kindSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken проверяет подпись, срок и тип токена сессии
func (m *TokenManager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Kind != kindSession || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueActionToken выпускает токен для действия action
func (m *TokenManager) IssueActionToken(action, subject string) (string, error) {
	now := m.now()
	claims := ActionClaims{
		Action: action,
		Kind:   kindAction,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.actionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign action token: %w", err)
	}
	return signed, nil
}

// VerifyActionToken - токен действителен, выпущен для action и для subject
func (m *TokenManager) VerifyActionToken(tokenString, action, subject string) error {
	claims := &ActionClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return err
	}
	if claims.Kind != kindAction {
		return ErrInvalidToken
	}
	if claims.Action != action || claims.Subject != subject {
		return ErrWrongAction
	}
	return nil
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
