package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CommanderOutpost/remindria/internal/api"
	"github.com/CommanderOutpost/remindria/internal/users"
)

type Service struct {
	users *users.Service
	jwt   *JWTManager
	redis *redis.Client
}

func NewService(usersSvc *users.Service, jwtManager *JWTManager, redisClient *redis.Client) *Service {
	return &Service{
		users: usersSvc,
		jwt:   jwtManager,
		redis: redisClient,
	}
}

func (s *Service) Register(ctx context.Context, email, password, name string) (*users.User, *TokenPair, error) {
	user, err := s.users.Create(ctx, email, password, name)
	if err != nil {
		return nil, nil, err
	}

	pair, tokenID, err := s.jwt.GenerateTokenPair(user.ID.String(), user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	if err := s.storeRefreshToken(ctx, user.ID.String(), tokenID); err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*users.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, api.ErrInvalidCredentials
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil, api.ErrInvalidCredentials
	}

	pair, tokenID, err := s.jwt.GenerateTokenPair(user.ID.String(), user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	if err := s.storeRefreshToken(ctx, user.ID.String(), tokenID); err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, api.ErrInvalidToken
	}

	key := refreshKey(claims.UserID, claims.TokenID)
	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("checking refresh token: %w", err)
	}
	if exists == 0 {
		return nil, api.ErrInvalidToken
	}

	// Rotate: revoke the old token before issuing a new pair.
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("revoking refresh token: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, api.ErrInvalidToken
	}

	pair, tokenID, err := s.jwt.GenerateTokenPair(user.ID.String(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	if err := s.storeRefreshToken(ctx, user.ID.String(), tokenID); err != nil {
		return nil, err
	}

	return pair, nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("refresh:%s:*", userID)
	iter := s.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("deleting refresh token: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning refresh tokens: %w", err)
	}
	return nil
}

func (s *Service) JWT() *JWTManager {
	return s.jwt
}

func (s *Service) storeRefreshToken(ctx context.Context, userID, tokenID string) error {
	key := refreshKey(userID, tokenID)
	if err := s.redis.Set(ctx, key, time.Now().Unix(), s.jwt.RefreshExpiry()).Err(); err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}
	return nil
}

func refreshKey(userID, tokenID string) string {
	return fmt.Sprintf("refresh:%s:%s", userID, tokenID)
}
