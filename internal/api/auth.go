package api

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	contextUserIDKey = "user_id"
	tokenIssuer      = "bloom"
	signingKeyInfo   = "bloom api token signing v1"
	signingKeyLength = 32
	DefaultTokenTTL  = 30 * 24 * time.Hour
)

var (
	ErrEmptySecret  = errors.New("secret key is empty")
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
)

type authClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// DeriveSigningKey stretches the configured secret into the HMAC key used for
// API tokens, so the raw secret never signs anything directly.
func DeriveSigningKey(secret string) ([]byte, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, signingKeyLength)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(signingKeyInfo))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return key, nil
}

func IssueToken(signingKey []byte, userID string, ttl time.Duration, now time.Time) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

func parseToken(signingKey []byte, raw string, now time.Time) (string, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return signingKey, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return "", errInvalidToken
	}
	return claims.UserID, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	raw, err := bearerToken(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	userID, err := parseToken(handler.signingKey, raw, handler.now())
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserIDKey, userID)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(contextUserIDKey).(string)
	return userID
}
