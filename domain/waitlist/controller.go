package waitlist

import (
	"net/http"
	"time"

	"github.com/physiscaffold/waitlist-api/config/router"
	apperrors "github.com/physiscaffold/waitlist-api/pkg/errors"
	"github.com/physiscaffold/waitlist-api/pkg/ratelimit"
)

// Signup bursts are human-paced; the enroll endpoint gets a tighter
// limit than the router default.
const (
	EnrollRateLimitRequests = 30
	EnrollRateLimitWindow   = time.Minute
)

// NewWaitlistController mounts the signup endpoints. enrollLimiter may
// be nil, in which case an in-memory limiter is used.
func NewWaitlistController(service WaitlistService, enrollLimiter ratelimit.RateLimiter) *router.RESTController {
	if enrollLimiter == nil {
		enrollLimiter = ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
			Requests: EnrollRateLimitRequests,
			Window:   EnrollRateLimitWindow,
		})
	}

	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, enrollLimiter, "", enrollHandler(service))
			rs.AddGetHandler(c, nil, "/count", countHandler(service))
		},
	)
}

func enrollHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req EnrollRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		result, err := service.Enroll(ctx.Request.Context(), req.Email)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		if !result.Created {
			return router.OKResult(&EnrollResponse{Created: false}, "You're already on the waitlist!")
		}

		return &router.ServiceResult{
			StatusCode: http.StatusCreated,
			Data:       &EnrollResponse{Created: true},
			Message:    "Successfully joined the waitlist!",
		}
	}
}

func countHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		count, err := service.Count(ctx.Request.Context())
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(&CountResponse{Count: count}, "Waitlist count retrieved successfully")
	}
}
