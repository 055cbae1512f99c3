package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no code is pending for an address.
var ErrOTPNotFound = errors.New("no pending code")

// OTPStore holds short-lived one-time codes and their bookkeeping:
// the bcrypt hash of the active code, a resend cooldown, and a
// verification attempt counter. Everything expires on its own.
type OTPStore interface {
	// SaveCode stores the code hash and resets the attempt counter
	SaveCode(ctx context.Context, email, codeHash string, ttl time.Duration) error

	// GetCode retrieves the stored code hash
	GetCode(ctx context.Context, email string) (string, error)

	// DeleteCode consumes the code after a successful verification
	DeleteCode(ctx context.Context, email string) error

	// IncrAttempts bumps and returns the failed-attempt counter
	IncrAttempts(ctx context.Context, email string) (int64, error)

	// SetCooldown starts the resend cooldown window
	SetCooldown(ctx context.Context, email string, d time.Duration) error

	// CooldownRemaining reports how long until another code may be sent
	CooldownRemaining(ctx context.Context, email string) (time.Duration, error)
}

type redisOTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) OTPStore {
	return &redisOTPStore{client: client}
}

func codeKey(email string) string     { return fmt.Sprintf("otp:code:%s", email) }
func attemptsKey(email string) string { return fmt.Sprintf("otp:attempts:%s", email) }
func cooldownKey(email string) string { return fmt.Sprintf("otp:cooldown:%s", email) }

func (s *redisOTPStore) SaveCode(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, codeKey(email), codeHash, ttl)
	pipe.Del(ctx, attemptsKey(email))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisOTPStore) GetCode(ctx context.Context, email string) (string, error) {
	hash, err := s.client.Get(ctx, codeKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *redisOTPStore) DeleteCode(ctx context.Context, email string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, codeKey(email))
	pipe.Del(ctx, attemptsKey(email))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisOTPStore) IncrAttempts(ctx context.Context, email string) (int64, error) {
	count, err := s.client.Incr(ctx, attemptsKey(email)).Result()
	if err != nil {
		return 0, err
	}
	// Attempts expire with the code at the latest
	s.client.Expire(ctx, attemptsKey(email), 10*time.Minute)
	return count, nil
}

func (s *redisOTPStore) SetCooldown(ctx context.Context, email string, d time.Duration) error {
	return s.client.Set(ctx, cooldownKey(email), 1, d).Err()
}

func (s *redisOTPStore) CooldownRemaining(ctx context.Context, email string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, cooldownKey(email)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
