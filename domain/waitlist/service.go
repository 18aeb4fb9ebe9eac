package waitlist

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/physiscaffold/waitlist-api/internal/log"
	"github.com/physiscaffold/waitlist-api/internal/models"
	apperrors "github.com/physiscaffold/waitlist-api/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	countCacheKey = "waitlist:count"
	countCacheTTL = 30 * time.Second

	defaultNotifyTimeout = 15 * time.Second
)

// EnrollResult reports how an enrollment resolved. A duplicate email is
// not an error; the caller learns about it through Created=false.
type EnrollResult struct {
	Created bool
}

type WaitlistService interface {
	// Enroll validates and normalizes rawEmail, persists a new entry
	// with a fresh access code, and dispatches the welcome email in the
	// background. An existing or concurrently-created entry for the
	// same normalized email yields Created=false.
	Enroll(ctx context.Context, rawEmail string) (*EnrollResult, error)

	// Count returns the number of enrolled emails.
	Count(ctx context.Context) (int64, error)

	// Flush blocks until all in-flight welcome dispatches finish. Used
	// during graceful shutdown.
	Flush()
}

// CountCache is the slice of the cache layer the service needs. The
// landing page polls the signup count, so it is cached briefly.
type CountCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	dispatcher WelcomeDispatcher
	cache      CountCache
	metrics    *signupMetrics

	notifyTimeout time.Duration
	notifyWG      sync.WaitGroup
}

// NewWaitlistService wires the enrollment workflow. cache and
// metricsReg may be nil.
func NewWaitlistService(
	logger *log.Logger,
	repository WaitlistRepository,
	dispatcher WelcomeDispatcher,
	cache CountCache,
	metricsReg prometheus.Registerer,
) WaitlistService {
	return &waitlistService{
		logger:        logger,
		repository:    repository,
		dispatcher:    dispatcher,
		cache:         cache,
		metrics:       newSignupMetrics(metricsReg),
		notifyTimeout: defaultNotifyTimeout,
	}
}

func (s *waitlistService) Enroll(ctx context.Context, rawEmail string) (*EnrollResult, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	email := NormalizeEmail(rawEmail)
	if !IsValidEmail(email) {
		s.metrics.recordSignup("invalid")
		return nil, apperrors.NewInvalidRequestError("invalid email format", nil)
	}

	existing, err := s.repository.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Failed to look up waitlist entry", "error", err)
		s.metrics.recordSignup("error")
		return nil, err
	}
	if existing != nil {
		s.metrics.recordSignup("already_enrolled")
		return &EnrollResult{Created: false}, nil
	}

	code, err := GenerateAccessCode()
	if err != nil {
		logger.Error("Failed to generate access code", "error", err)
		s.metrics.recordSignup("error")
		return nil, apperrors.NewInternalServerError("unable to issue access code", err)
	}

	entry := &models.WaitlistEntry{
		Email:      email,
		AccessCode: code,
		Source:     models.SourceWebsite,
	}

	if err := s.repository.Insert(ctx, entry); err != nil {
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeConflict {
			// Lost the race to a concurrent signup for the same email.
			// The unique index makes lookup+insert behave as if
			// serialized per address, so this resolves like a plain
			// duplicate.
			s.metrics.recordSignup("already_enrolled")
			return &EnrollResult{Created: false}, nil
		}
		logger.Error("Failed to create waitlist entry", "error", err)
		s.metrics.recordSignup("error")
		return nil, err
	}

	s.invalidateCountCache(ctx, logger)
	s.metrics.recordSignup("created")
	s.dispatchWelcome(ctx, email, code)

	logger.Info("New waitlist signup", "email", email)

	return &EnrollResult{Created: true}, nil
}

// dispatchWelcome sends the welcome email off the request path. The
// enrollment is already durable; whatever happens here is logged and
// absorbed.
func (s *waitlistService) dispatchWelcome(ctx context.Context, email, code string) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	// The dispatch outlives the HTTP request; drop its cancellation but
	// keep its values (correlation ID).
	detached := context.WithoutCancel(ctx)

	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()

		notifyCtx, cancel := context.WithTimeout(detached, s.notifyTimeout)
		defer cancel()

		if err := s.dispatcher.Notify(notifyCtx, email, code); err != nil {
			s.metrics.recordNotification("failure")
			logger.Error("Failed to send welcome email", "email", email, "error", err)
			return
		}

		s.metrics.recordNotification("success")

		if err := s.repository.MarkNotified(notifyCtx, email, time.Now().UTC()); err != nil {
			logger.Error("Failed to record welcome email delivery", "email", email, "error", err)
		}
	}()
}

func (s *waitlistService) Count(ctx context.Context) (int64, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, countCacheKey); err == nil && raw != "" {
			if count, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.repository.CountAll(ctx)
	if err != nil {
		logger.Error("Failed to count waitlist entries", "error", err)
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, countCacheKey, strconv.FormatInt(count, 10), countCacheTTL); err != nil {
			logger.Warn("Failed to cache waitlist count", "error", err)
		}
	}

	return count, nil
}

func (s *waitlistService) Flush() {
	s.notifyWG.Wait()
}

func (s *waitlistService) invalidateCountCache(ctx context.Context, logger *log.Logger) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, countCacheKey); err != nil {
		logger.Warn("Failed to invalidate waitlist count cache", "error", err)
	}
}
