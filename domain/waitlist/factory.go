package waitlist

import (
	"github.com/physiscaffold/waitlist-api/config/router"
	"github.com/physiscaffold/waitlist-api/internal/log"
	"github.com/physiscaffold/waitlist-api/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController(service WaitlistService) *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db            *gorm.DB
	logger        *log.Logger
	dispatcher    WelcomeDispatcher
	cache         CountCache
	metricsReg    prometheus.Registerer
	enrollLimiter ratelimit.RateLimiter
}

// NewWaitlistServiceFactory builds the enrollment stack. cache,
// metricsReg and enrollLimiter may be nil.
func NewWaitlistServiceFactory(
	db *gorm.DB,
	logger *log.Logger,
	dispatcher WelcomeDispatcher,
	cache CountCache,
	metricsReg prometheus.Registerer,
	enrollLimiter ratelimit.RateLimiter,
) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:            db,
		logger:        logger,
		dispatcher:    dispatcher,
		cache:         cache,
		metricsReg:    metricsReg,
		enrollLimiter: enrollLimiter,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	repository := NewWaitlistRepository(f.db)
	return NewWaitlistService(f.logger, repository, f.dispatcher, f.cache, f.metricsReg)
}

func (f *DefaultWaitlistServiceFactory) CreateController(service WaitlistService) *router.RESTController {
	return NewWaitlistController(service, f.enrollLimiter)
}
