package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/physiscaffold/waitlist-api/config"
	"github.com/physiscaffold/waitlist-api/config/router"
	"github.com/physiscaffold/waitlist-api/domain"
	"github.com/physiscaffold/waitlist-api/internal/log"
	"github.com/physiscaffold/waitlist-api/internal/models"
	"github.com/physiscaffold/waitlist-api/pkg/mailer"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingSender stands in for the mail provider. It captures every
// message and can be switched into a failing mode per test.
type recordingSender struct {
	mu   sync.Mutex
	sent []*mailer.Message
	fail bool
}

func (s *recordingSender) Send(_ context.Context, msg *mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return errors.New("mail provider unavailable")
	}

	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) setFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *recordingSender) messages() []*mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*mailer.Message(nil), s.sent...)
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
	s.fail = false
}

type WaitlistAPITestSuite struct {
	suite.Suite
	db                 *gorm.DB
	server             *httptest.Server
	baseURL            string
	logger             *log.Logger
	appConfig          *config.ApplicationConfig
	sender             *recordingSender
	flushNotifications func()
}

func (suite *WaitlistAPITestSuite) SetupSuite() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(models.ModelRegistry...)
	suite.Require().NoError(err)

	suite.logger = log.NewLoggerWithJSONOutput()
	suite.sender = &recordingSender{}

	suite.appConfig = &config.ApplicationConfig{
		DB:     suite.db,
		Logger: suite.logger,
		Mailer: suite.sender,
	}

	suite.appConfig.RouterService = router.CreateRouterService(suite.logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	suite.flushNotifications = domain.SetupCoreDomain(suite.appConfig)

	suite.server = httptest.NewServer(suite.appConfig.RouterService.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *WaitlistAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *WaitlistAPITestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM waitlist_entries")
	suite.sender.reset()
}

func (suite *WaitlistAPITestSuite) enroll(email string) (*http.Response, map[string]interface{}) {
	jsonBody, _ := json.Marshal(map[string]string{"email": email})

	resp, err := http.Post(suite.baseURL+"/v1/waitlist", "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var response map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&response)
	suite.Require().NoError(err)

	return resp, response
}

func (suite *WaitlistAPITestSuite) TestHealthCheck() {
	resp, err := http.Get(suite.baseURL + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&response)
	suite.Require().NoError(err)

	suite.Equal(float64(200), response["code"])
	suite.Contains(response["message"], "health check completed")

	data := response["data"].(map[string]interface{})
	suite.Equal(float64(1), data["database"])
	suite.Contains(data, "uptime")
}

func (suite *WaitlistAPITestSuite) TestFirstSignup() {
	resp, response := suite.enroll("john.doe@example.com")

	suite.Equal(http.StatusCreated, resp.StatusCode)
	suite.Equal(float64(201), response["code"])
	suite.Equal("Successfully joined the waitlist!", response["message"])

	data := response["data"].(map[string]interface{})
	suite.Equal(true, data["created"])

	var entry models.WaitlistEntry
	err := suite.db.Where("email = ?", "john.doe@example.com").First(&entry).Error
	suite.Require().NoError(err)

	suite.Regexp(regexp.MustCompile(`^PS-[A-HJ-NP-Z2-9]{8}$`), entry.AccessCode)
	suite.Equal(models.SourceWebsite, entry.Source)

	suite.flushNotifications()

	messages := suite.sender.messages()
	suite.Require().Len(messages, 1)
	suite.Equal("john.doe@example.com", messages[0].To)
	suite.Equal("Welcome to PhysiScaffold - Your Access Code Inside", messages[0].Subject)
	suite.Contains(messages[0].HTML, entry.AccessCode)

	err = suite.db.Where("email = ?", "john.doe@example.com").First(&entry).Error
	suite.Require().NoError(err)
	suite.NotNil(entry.NotifiedAt)
}

func (suite *WaitlistAPITestSuite) TestDuplicateSignup() {
	resp, _ := suite.enroll("repeat@example.com")
	suite.Equal(http.StatusCreated, resp.StatusCode)
	suite.flushNotifications()

	resp, response := suite.enroll("repeat@example.com")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(float64(200), response["code"])
	suite.Equal("You're already on the waitlist!", response["message"])

	data := response["data"].(map[string]interface{})
	suite.Equal(false, data["created"])

	var count int64
	suite.db.Model(&models.WaitlistEntry{}).Count(&count)
	suite.Equal(int64(1), count)

	// The welcome email goes out once, on the first signup only.
	suite.flushNotifications()
	suite.Len(suite.sender.messages(), 1)
}

func (suite *WaitlistAPITestSuite) TestSignupNormalizesEmail() {
	resp, _ := suite.enroll("  Mixed.Case@Example.COM ")
	suite.Equal(http.StatusCreated, resp.StatusCode)

	var entry models.WaitlistEntry
	err := suite.db.Where("email = ?", "mixed.case@example.com").First(&entry).Error
	suite.Require().NoError(err)

	resp, response := suite.enroll("MIXED.CASE@EXAMPLE.COM")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("You're already on the waitlist!", response["message"])

	suite.flushNotifications()
}

func (suite *WaitlistAPITestSuite) TestSignupRejectsMissingEmail() {
	resp, response := suite.enroll("")

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(float64(400), response["code"])
	suite.Contains(response["message"], "Invalid request payload")
}

func (suite *WaitlistAPITestSuite) TestSignupRejectsMalformedEmail() {
	for _, email := range []string{"not-an-email", "missing@tld", "two @example.com"} {
		resp, response := suite.enroll(email)

		suite.Equal(http.StatusBadRequest, resp.StatusCode, "expected %q to be rejected", email)
		suite.Contains(response["message"], "invalid email format")
	}

	var count int64
	suite.db.Model(&models.WaitlistEntry{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *WaitlistAPITestSuite) TestSignupSurvivesMailProviderOutage() {
	suite.sender.setFailing(true)

	resp, response := suite.enroll("unlucky@example.com")
	suite.Equal(http.StatusCreated, resp.StatusCode)

	data := response["data"].(map[string]interface{})
	suite.Equal(true, data["created"])

	suite.flushNotifications()

	// The enrollment is durable; only the notified marker is missing.
	var entry models.WaitlistEntry
	err := suite.db.Where("email = ?", "unlucky@example.com").First(&entry).Error
	suite.Require().NoError(err)
	suite.Nil(entry.NotifiedAt)
}

func (suite *WaitlistAPITestSuite) TestWaitlistCount() {
	for _, email := range []string{"one@example.com", "two@example.com", "three@example.com"} {
		resp, _ := suite.enroll(email)
		suite.Equal(http.StatusCreated, resp.StatusCode)
	}
	suite.flushNotifications()

	resp, err := http.Get(suite.baseURL + "/v1/waitlist/count")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&response)
	suite.Require().NoError(err)

	suite.Equal(float64(200), response["code"])

	data := response["data"].(map[string]interface{})
	suite.Equal(float64(3), data["count"])
}

func TestWaitlistAPISuite(t *testing.T) {
	// Skip integration tests unless explicitly requested
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration tests. Set RUN_INTEGRATION_TESTS=true to run them")
	}

	suite.Run(t, new(WaitlistAPITestSuite))
}
