package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer          = "kamwaalay"
	revokedTokenPrefix   = "revoked_token"
	minimumRevocationTTL = time.Second
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
)

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type TokenService struct {
	secret []byte
	expiry time.Duration
	store  KeyStore
	now    func() time.Time
	log    logger.Logger
}

func NewTokenService(config config.Config, store KeyStore) *TokenService {
	return &TokenService{
		secret: []byte(config.JWTSecret),
		expiry: time.Duration(config.JWTExpiryHours) * time.Hour,
		store:  store,
		now:    time.Now,
		log:    logger.New("TokenService"),
	}
}

// Issue signs an HS256 access token for user.
func (s *TokenService) Issue(user *models.User) (string, *Claims, error) {
	log := s.log.Function("Issue")

	now := s.now()
	claims := &Claims{
		Roles: user.RoleNames(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, log.Err("failed to sign token", err, "userID", user.ID)
	}

	return token, claims, nil
}

// Parse verifies the signature, expiry and revocation state of a token.
func (s *TokenService) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.store.Exists(ctx, revokedTokenKey(claims.ID))
	if err != nil {
		return nil, s.log.Function("Parse").Err("failed to check token revocation", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// Revoke denylists the token id until the token would have expired anyway.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	log := s.log.TraceFromContext(ctx).Function("Revoke")

	ttl := minimumRevocationTTL
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > ttl {
			ttl = remaining
		}
	}

	if err := s.store.Set(ctx, revokedTokenKey(claims.ID), claims.Subject, ttl); err != nil {
		return log.Err("failed to revoke token", err, "jti", claims.ID)
	}

	return nil
}

func revokedTokenKey(jti string) string {
	return revokedTokenPrefix + ":" + jti
}
