package waitlist

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/physiscaffold/waitlist-api/internal/log"
	"github.com/physiscaffold/waitlist-api/internal/models"
	apperrors "github.com/physiscaffold/waitlist-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var accessCodePattern = regexp.MustCompile(`^PS-[A-HJ-NP-Z2-9]{8}$`)

func newTestService(t *testing.T) (*MockWaitlistRepository, *MockWelcomeDispatcher, WaitlistService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockRepo := NewMockWaitlistRepository(ctrl)
	mockDispatcher := NewMockWelcomeDispatcher(ctrl)
	logger := log.NewLoggerWithJSONOutput()
	service := NewWaitlistService(logger, mockRepo, mockDispatcher, nil, nil)

	return mockRepo, mockDispatcher, service
}

func TestWaitlistService_Enroll(t *testing.T) {
	t.Run("first signup creates a record and dispatches the welcome email", func(t *testing.T) {
		mockRepo, mockDispatcher, service := newTestService(t)

		var inserted *models.WaitlistEntry

		mockRepo.EXPECT().
			FindByEmail(gomock.Any(), "student@example.com").
			Return(nil, nil)

		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *models.WaitlistEntry) error {
				inserted = entry
				return nil
			})

		mockDispatcher.EXPECT().
			Notify(gomock.Any(), "student@example.com", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, accessCode string) error {
				assert.Equal(t, inserted.AccessCode, accessCode)
				return nil
			})

		mockRepo.EXPECT().
			MarkNotified(gomock.Any(), "student@example.com", gomock.Any()).
			Return(nil)

		result, err := service.Enroll(context.Background(), "student@example.com")
		require.NoError(t, err)
		assert.True(t, result.Created)

		service.Flush()

		require.NotNil(t, inserted)
		assert.Equal(t, "student@example.com", inserted.Email)
		assert.Equal(t, models.SourceWebsite, inserted.Source)
		assert.Regexp(t, accessCodePattern, inserted.AccessCode)
		assert.Nil(t, inserted.NotifiedAt)
	})

	t.Run("existing email resolves to already enrolled", func(t *testing.T) {
		mockRepo, _, service := newTestService(t)

		mockRepo.EXPECT().
			FindByEmail(gomock.Any(), "student@example.com").
			Return(&models.WaitlistEntry{Email: "student@example.com", AccessCode: "PS-ABCDEFGH"}, nil)

		result, err := service.Enroll(context.Background(), "student@example.com")
		require.NoError(t, err)
		assert.False(t, result.Created)

		service.Flush()
	})

	t.Run("email is normalized before lookup and storage", func(t *testing.T) {
		mockRepo, _, service := newTestService(t)

		mockRepo.EXPECT().
			FindByEmail(gomock.Any(), "student@example.com").
			Return(&models.WaitlistEntry{Email: "student@example.com"}, nil)

		result, err := service.Enroll(context.Background(), "  Student@Example.COM ")
		require.NoError(t, err)
		assert.False(t, result.Created)
	})

	t.Run("malformed emails are rejected without touching the store", func(t *testing.T) {
		_, _, service := newTestService(t)

		for _, raw := range []string{"", "not-an-email", "missing@tld", "spaces in@example.com"} {
			result, err := service.Enroll(context.Background(), raw)
			require.Error(t, err, "expected %q to be rejected", raw)
			assert.Nil(t, result)
			assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
		}
	})

	t.Run("insert conflict from a concurrent signup resolves to already enrolled", func(t *testing.T) {
		mockRepo, _, service := newTestService(t)

		mockRepo.EXPECT().
			FindByEmail(gomock.Any(), "student@example.com").
			Return(nil, nil)

		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(apperrors.NewConflictError("waitlist entry with this email already exists", nil))

		result, err := service.Enroll(context.Background(), "student@example.com")
		require.NoError(t, err)
		assert.False(t, result.Created)

		service.Flush()
	})

	t.Run("lookup failure surfaces as a storage error", func(t *testing.T) {
		mockRepo, _, service := newTestService(t)

		mockRepo.EXPECT().
			FindByEmail(gomock.Any(), "student@example.com").
			Return(nil, apperrors.NewDatabaseError("failed to look up waitlist entry", nil))

		result, err := service.Enroll(context.Background(), "student@example.com")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
	})

	t.Run("notification failure does not undo the enrollment", func(t *testing.T) {
		mockRepo, mockDispatcher, service := newTestService(t)

		mockRepo.EXPECT().
			FindByEmail(gomock.Any(), "student@example.com").
			Return(nil, nil)

		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		mockDispatcher.EXPECT().
			Notify(gomock.Any(), "student@example.com", gomock.Any()).
			Return(apperrors.NewInternalServerError("channel unreachable", nil))

		// MarkNotified must not be called when dispatch fails.

		result, err := service.Enroll(context.Background(), "student@example.com")
		require.NoError(t, err)
		assert.True(t, result.Created)

		service.Flush()
	})

	t.Run("mark-notified failure is absorbed", func(t *testing.T) {
		mockRepo, mockDispatcher, service := newTestService(t)

		mockRepo.EXPECT().
			FindByEmail(gomock.Any(), "student@example.com").
			Return(nil, nil)

		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		mockDispatcher.EXPECT().
			Notify(gomock.Any(), "student@example.com", gomock.Any()).
			Return(nil)

		mockRepo.EXPECT().
			MarkNotified(gomock.Any(), "student@example.com", gomock.Any()).
			Return(apperrors.NewDatabaseError("unable to mark waitlist entry as notified", nil))

		result, err := service.Enroll(context.Background(), "student@example.com")
		require.NoError(t, err)
		assert.True(t, result.Created)

		service.Flush()
	})
}

// fakeWaitlistRepo is a thread-safe in-memory repository used to
// exercise the same-email race without a database.
type fakeWaitlistRepo struct {
	mu      sync.Mutex
	entries map[string]*models.WaitlistEntry
}

func newFakeWaitlistRepo() *fakeWaitlistRepo {
	return &fakeWaitlistRepo{entries: make(map[string]*models.WaitlistEntry)}
}

func (f *fakeWaitlistRepo) FindByEmail(_ context.Context, email string) (*models.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[email], nil
}

func (f *fakeWaitlistRepo) Insert(_ context.Context, entry *models.WaitlistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.entries[entry.Email]; exists {
		return apperrors.NewConflictError("waitlist entry with this email already exists", nil)
	}
	f.entries[entry.Email] = entry
	return nil
}

func (f *fakeWaitlistRepo) CountAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.entries)), nil
}

func (f *fakeWaitlistRepo) MarkNotified(_ context.Context, email string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[email]
	if !ok || entry.NotifiedAt != nil {
		return apperrors.NewNotFoundError("waitlist entry not found or already notified", nil)
	}
	entry.NotifiedAt = &at
	return nil
}

type noopDispatcher struct{}

func (noopDispatcher) Notify(context.Context, string, string) error { return nil }

func TestWaitlistService_ConcurrentEnrollSameEmail(t *testing.T) {
	const attempts = 20

	repo := newFakeWaitlistRepo()
	logger := log.NewLoggerWithJSONOutput()
	service := NewWaitlistService(logger, repo, noopDispatcher{}, nil, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := service.Enroll(context.Background(), "student@example.com")
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			if result.Created {
				created++
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	service.Flush()

	assert.Equal(t, 1, created, "exactly one attempt should win the race")

	count, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// staticCache is a map-backed CountCache for testing the count path.
type staticCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newStaticCache() *staticCache {
	return &staticCache{data: make(map[string]string)}
}

func (c *staticCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *staticCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *staticCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func TestWaitlistService_Count(t *testing.T) {
	t.Run("returns the repository count", func(t *testing.T) {
		mockRepo, _, service := newTestService(t)

		mockRepo.EXPECT().CountAll(gomock.Any()).Return(int64(42), nil)

		count, err := service.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(42), count)
	})

	t.Run("serves a cached count without hitting the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockWaitlistRepository(ctrl)
		cache := newStaticCache()
		logger := log.NewLoggerWithJSONOutput()
		service := NewWaitlistService(logger, mockRepo, NewMockWelcomeDispatcher(ctrl), cache, nil)

		mockRepo.EXPECT().CountAll(gomock.Any()).Return(int64(7), nil).Times(1)

		// First call misses the cache and stores the value.
		count, err := service.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)

		// Second call is served from the cache.
		count, err = service.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
	})

	t.Run("enrollment invalidates the cached count", func(t *testing.T) {
		repo := newFakeWaitlistRepo()
		cache := newStaticCache()
		logger := log.NewLoggerWithJSONOutput()
		service := NewWaitlistService(logger, repo, noopDispatcher{}, cache, nil)

		count, err := service.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		result, err := service.Enroll(context.Background(), "student@example.com")
		require.NoError(t, err)
		assert.True(t, result.Created)
		service.Flush()

		count, err = service.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
