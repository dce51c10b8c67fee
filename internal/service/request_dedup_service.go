package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	RedisIdempotencyKeyPrefix = "idempotency:"

	requestInFlight  = "in-flight"
	requestCompleted = "completed"
)

// RequestDedupService remembers request ids so a repeated mutating request
// (double click, client retry) is rejected instead of applied twice.
type RequestDedupService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewRequestDedupService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *RequestDedupService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RequestDedupService{redisClient: redisClient, log: log, ttl: ttl}
}

func requestKey(scope, requestID string) string {
	return fmt.Sprintf("%s%s:%s", RedisIdempotencyKeyPrefix, scope, requestID)
}

// Acquire marks the request as in flight. It returns false when the same
// scope already used requestID within the TTL.
func (s *RequestDedupService) Acquire(ctx context.Context, scope, requestID string) (bool, error) {
	ok, err := s.redisClient.SetNX(ctx, requestKey(scope, requestID), requestInFlight, s.ttl).Result()
	if err != nil {
		s.log.Warnf("Failed to acquire request id %s: %+v", requestID, err)
		return false, err
	}
	return ok, nil
}

// Complete records that the request finished, keeping the original TTL.
func (s *RequestDedupService) Complete(ctx context.Context, scope, requestID string) error {
	err := s.redisClient.SetArgs(ctx, requestKey(scope, requestID), requestCompleted, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err()
	if err != nil && err != redis.Nil {
		s.log.Warnf("Failed to complete request id %s: %+v", requestID, err)
		return err
	}
	return nil
}

// Release forgets the request so the client may retry it.
func (s *RequestDedupService) Release(ctx context.Context, scope, requestID string) error {
	if err := s.redisClient.Del(ctx, requestKey(scope, requestID)).Err(); err != nil {
		s.log.Warnf("Failed to release request id %s: %+v", requestID, err)
		return err
	}
	return nil
}
