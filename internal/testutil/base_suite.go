package testutil

import (
	"context"
	"time"

	"github.com/classward/classward/internal/config"
	"github.com/classward/classward/internal/domain/plan"
	"github.com/classward/classward/internal/domain/student"
	"github.com/classward/classward/internal/domain/subscription"
	"github.com/classward/classward/internal/locker"
	"github.com/classward/classward/internal/logger"
	"github.com/classward/classward/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds the repository interfaces handed to services under test
type Stores struct {
	SubscriptionRepo subscription.Repository
	StudentRepo      student.Repository
	PlanRepo         plan.Repository
}

// BaseServiceTestSuite provides common functionality for service test
// suites: a logger, a default config, in-memory stores and a context
// carrying an authenticated caller.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	locker *locker.KeyedLocker
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError

	log, err := logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.logger = log
	s.config = cfg
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.now = time.Now().UTC()
	s.ctx = context.Background()
	s.locker = locker.NewKeyedLocker()
	s.stores = Stores{
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		StudentRepo:      NewInMemoryStudentStore(),
		PlanRepo:         NewInMemoryPlanStore(),
	}
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ctx = nil
}

// SetUserContext installs the given caller id in the suite context, the
// way the auth middleware does for real requests.
func (s *BaseServiceTestSuite) SetUserContext(userID string) {
	s.ctx = context.WithValue(context.Background(), types.CtxUserID, userID)
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetLocker() *locker.KeyedLocker {
	return s.locker
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
