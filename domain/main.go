package domain

import (
	"github.com/physiscaffold/waitlist-api/config"
	"github.com/physiscaffold/waitlist-api/domain/monitoring"
	"github.com/physiscaffold/waitlist-api/domain/waitlist"
	"github.com/physiscaffold/waitlist-api/pkg/factory"
)

// SetupCoreDomain mounts all controllers and returns a flush function
// the server calls during graceful shutdown to drain in-flight welcome
// email dispatches.
func SetupCoreDomain(appConfig *config.ApplicationConfig) func() {
	monitoringFactory := monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, appConfig.Cache)
	appConfig.RouterService.MountController(monitoringFactory.CreateController())

	var countCache waitlist.CountCache
	if appConfig.Cache != nil {
		countCache = appConfig.Cache
	}

	// The enroll limiter goes through the shared factory so it becomes
	// distributed when Redis is configured.
	enrollLimiter := factory.NewDefaultRateLimiterFactory(
		waitlist.EnrollRateLimitRequests,
		waitlist.EnrollRateLimitWindow,
		appConfig.Cache,
		appConfig.Logger,
	).CreateRateLimiter()

	dispatcher := waitlist.NewWelcomeDispatcher(appConfig.Mailer, appConfig.MailFrom)
	waitlistFactory := waitlist.NewWaitlistServiceFactory(
		appConfig.DB,
		appConfig.Logger,
		dispatcher,
		countCache,
		appConfig.RouterService.MetricsRegisterer(),
		enrollLimiter,
	)

	service := waitlistFactory.CreateService()
	appConfig.RouterService.MountController(waitlistFactory.CreateController(service))

	return service.Flush
}
