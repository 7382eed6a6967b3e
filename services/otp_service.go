// services/otp_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/utils"
)

const (
	maxVerifyAttempts    = 3
	defaultExpiryMinutes = 5
	optInCacheTTL        = 24 * time.Hour
)

// OtpDispatcher is the outbound messaging collaborator
type OtpDispatcher interface {
	SendOTP(ctx context.Context, phone, otp string, expiryMinutes int) (*models.DispatchReceipt, error)
	RegisterOptIn(ctx context.Context, phone string) (*models.GupshupOptInResponse, error)
}

// OtpUserStore is the slice of user persistence the OTP flow needs
type OtpUserStore interface {
	UpsertOnOtpRequest(ctx context.Context, phone string) error
	MarkVerified(ctx context.Context, phone string, at time.Time) error
}

// IssueResult is returned on successful OTP issuance
type IssueResult struct {
	Receipt   *models.DispatchReceipt
	ExpiresIn int // seconds until the code expires
}

// OtpService orchestrates the OTP lifecycle: rate-limited issuance,
// dispatch through the messaging provider, and verification with expiry
// and attempt limits. All mutations for a phone are serialized through
// the keyed mutex.
type OtpService struct {
	store      *OtpStore
	limiter    *OtpRateLimiter
	dispatcher OtpDispatcher
	users      OtpUserStore
	redis      *redis.Client
	keys       *utils.KeyMutex
	expiry     time.Duration
	logger     *log.Logger
	now        func() time.Time
}

// NewOtpService wires the OTP lifecycle manager. redisClient may be nil,
// which disables the opt-in dedup cache. Expiry comes from
// OTP_EXPIRY_MINUTES, defaulting to 5 minutes.
func NewOtpService(store *OtpStore, limiter *OtpRateLimiter, dispatcher OtpDispatcher, users OtpUserStore, redisClient *redis.Client) *OtpService {
	expiryMinutes := defaultExpiryMinutes
	if v := os.Getenv("OTP_EXPIRY_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			expiryMinutes = parsed
		}
	}

	return &OtpService{
		store:      store,
		limiter:    limiter,
		dispatcher: dispatcher,
		users:      users,
		redis:      redisClient,
		keys:       utils.NewKeyMutex(),
		expiry:     time.Duration(expiryMinutes) * time.Minute,
		logger:     log.New(os.Stdout, "[OTP] ", log.LstdFlags),
		now:        time.Now,
	}
}

// ExpiryMinutes returns the configured code lifetime in minutes
func (s *OtpService) ExpiryMinutes() int {
	return int(s.expiry / time.Minute)
}

// Issue validates the phone, registers the WhatsApp opt-in (best effort),
// enforces the rate limit, stores a fresh code and dispatches it. A live
// record for the phone is overwritten, invalidating the old code. When
// dispatch fails the stored record is kept: a code obtained out-of-band
// can still be verified.
func (s *OtpService) Issue(ctx context.Context, phone string) (*IssueResult, error) {
	phone, err := utils.SanitizePhone(phone)
	if err != nil {
		return nil, ErrInvalidPhone()
	}

	// Opt-in registration must never block issuance; it runs on its own
	// goroutine and only logs its outcome.
	go s.registerOptIn(phone)

	s.keys.Lock(phone)
	defer s.keys.Unlock(phone)

	if !s.limiter.Allow(phone) {
		return nil, ErrRateLimited()
	}

	otp, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	now := s.now()
	record := &models.OtpRecord{
		Phone:     phone,
		Code:      otp,
		ExpiresAt: now.Add(s.expiry),
		Attempts:  0,
		CreatedAt: now,
	}
	s.store.Put(record)

	receipt, err := s.dispatcher.SendOTP(ctx, phone, otp, s.ExpiryMinutes())
	if err != nil {
		s.logger.Printf("OTP dispatch failed for %s: %v", phone, err)
		return nil, ErrDispatchFailed(err)
	}

	if err := s.users.UpsertOnOtpRequest(ctx, phone); err != nil {
		// Non-critical: the OTP already went out
		s.logger.Printf("user upsert failed for %s: %v", phone, err)
	}

	return &IssueResult{
		Receipt:   receipt,
		ExpiresIn: int(record.ExpiresAt.Sub(now) / time.Second),
	}, nil
}

// Verify checks the supplied code against the live record for phone.
// Expired and exhausted records are deleted on sight; a mismatch burns an
// attempt; a match deletes the record and marks the user verified.
func (s *OtpService) Verify(ctx context.Context, phone, code string) error {
	phone, err := utils.SanitizePhone(phone)
	if err != nil {
		return ErrInvalidPhone()
	}

	s.keys.Lock(phone)
	defer s.keys.Unlock(phone)

	record, ok := s.store.Get(phone)
	if !ok {
		return ErrOTPNotFound()
	}

	if s.now().After(record.ExpiresAt) {
		s.store.Delete(phone)
		return ErrOTPExpired()
	}

	if record.Attempts >= maxVerifyAttempts {
		s.store.Delete(phone)
		return ErrMaxAttempts()
	}

	if record.Code != code {
		attempts, _ := s.store.IncrementAttempts(phone)
		return ErrInvalidOTP(maxVerifyAttempts - attempts)
	}

	s.store.Delete(phone)

	if err := s.users.MarkVerified(ctx, phone, s.now()); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// RegisterOptIn performs an explicit opt-in registration for phone
func (s *OtpService) RegisterOptIn(ctx context.Context, phone string) (*models.GupshupOptInResponse, error) {
	phone, err := utils.SanitizePhone(phone)
	if err != nil {
		return nil, ErrInvalidPhone()
	}
	return s.dispatcher.RegisterOptIn(ctx, phone)
}

// registerOptIn is the best-effort issuance-path variant, deduplicated
// through Redis so repeat issuers skip the provider call.
func (s *OtpService) registerOptIn(phone string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cacheKey := "optin:" + phone
	if s.redis != nil {
		if exists, err := s.redis.Exists(ctx, cacheKey).Result(); err == nil && exists > 0 {
			return
		}
	}

	if _, err := s.dispatcher.RegisterOptIn(ctx, phone); err != nil {
		s.logger.Printf("opt-in failed for %s (continuing): %v", phone, err)
		return
	}
	s.logger.Printf("WhatsApp opt-in registered for %s", phone)

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, "1", optInCacheTTL).Err(); err != nil {
			s.logger.Printf("opt-in cache write failed for %s: %v", phone, err)
		}
	}
}

// Stop shuts down the sweep routines owned by the OTP stores
func (s *OtpService) Stop() {
	s.store.Stop()
	s.limiter.Stop()
}
