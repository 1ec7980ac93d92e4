package usecase

import (
	"context"
	"time"

	"postpilot/domain/model"
	"postpilot/infrastructure/clients/platformapi"
	"postpilot/infrastructure/logger"
	"postpilot/infrastructure/security"
)

// RetryConfig bounds the inner transient-retry loop: up to MaxRetries extra
// attempts, sleeping InitialDelay, then doubling per BackoffFactor.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor int
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialDelay: time.Second, BackoffFactor: 2}
}

// SleepFunc is injectable for tests.
type SleepFunc func(time.Duration)

// withRetry runs fn with exponential backoff. Only network errors and 5xx are
// retried; everything else (including 429 and 401) surfaces immediately.
func withRetry(ctx context.Context, cfg RetryConfig, sleep SleepFunc, fn func() (string, error)) (string, error) {
	delay := cfg.InitialDelay
	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt >= cfg.MaxRetries || !platformapi.Retryable(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.GetLogger().
			WithField("delay", delay.String()).
			WithField("remaining", cfg.MaxRetries-attempt).
			WithField("error", err).
			Warn("Transient failure, retrying")
		sleep(delay)
		delay *= time.Duration(cfg.BackoffFactor)
	}
}

// ResilientCaller wraps one outbound platform call: decrypts the credential,
// retries transient failures with backoff, and on a 401 refreshes the token
// and retries exactly once. When the refresh itself fails the original 401
// error is surfaced, not the refresh error.
type ResilientCaller struct {
	tokens *TokenManager
	cipher *security.Cipher
	cfg    RetryConfig
	sleep  SleepFunc
}

func NewResilientCaller(tokens *TokenManager, cipher *security.Cipher, cfg RetryConfig, sleep SleepFunc) *ResilientCaller {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &ResilientCaller{tokens: tokens, cipher: cipher, cfg: cfg, sleep: sleep}
}

func (c *ResilientCaller) Call(ctx context.Context, cred *model.PlatformCredential, fn func(accessToken string) (string, error)) (string, error) {
	accessToken, err := c.cipher.Decrypt(cred.AccessToken)
	if err != nil {
		return "", err
	}

	result, err := withRetry(ctx, c.cfg, c.sleep, func() (string, error) {
		return fn(accessToken)
	})
	if err == nil {
		return result, nil
	}
	if !platformapi.Unauthorized(err) {
		return "", err
	}

	logger.GetLogger().
		WithField("credentialId", cred.ID).
		WithField("platform", cred.Platform).
		Warn("Unauthorized response, attempting token refresh")

	newToken, refreshErr := c.tokens.RefreshCredential(ctx, cred)
	if refreshErr != nil {
		return "", err
	}
	return fn(newToken)
}
