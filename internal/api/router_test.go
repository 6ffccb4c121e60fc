package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/classward/classward/internal/api/dto"
	v1 "github.com/classward/classward/internal/api/v1"
	"github.com/classward/classward/internal/auth"
	"github.com/classward/classward/internal/config"
	ierr "github.com/classward/classward/internal/errors"
	"github.com/classward/classward/internal/logger"
	"github.com/classward/classward/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// stubAuthProvider accepts the single configured token
type stubAuthProvider struct {
	token  string
	userID string
}

func (p *stubAuthProvider) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if token != p.token {
		return nil, ierr.NewError("token rejected").Mark(ierr.ErrPermissionDenied)
	}
	return &auth.Claims{UserID: p.userID}, nil
}

// stubChangeService returns a canned response or error and records the
// request it was called with
type stubChangeService struct {
	resp    *dto.ModifySubscriptionResponse
	err     error
	lastReq *dto.ModifySubscriptionRequest
	lastCtx context.Context
}

func (s *stubChangeService) ModifySubscription(ctx context.Context, req *dto.ModifySubscriptionRequest) (*dto.ModifySubscriptionResponse, error) {
	s.lastReq = req
	s.lastCtx = ctx
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type RouterSuite struct {
	suite.Suite
	router  *gin.Engine
	service *stubChangeService
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError
	log, err := logger.NewLogger(cfg)
	s.Require().NoError(err)

	s.service = &stubChangeService{}

	handlers := Handlers{
		Health:             v1.NewHealthHandler(log),
		SubscriptionChange: v1.NewSubscriptionChangeHandler(s.service, log),
	}

	authProvider := &stubAuthProvider{token: "valid-token", userID: "parent_1"}
	s.router = NewRouter(handlers, authProvider, log)
}

func (s *RouterSuite) changeRequest(body string, authorize bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions/change", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authorize {
		req.Header.Set("Authorization", "Bearer valid-token")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestHealthIsUnauthenticated() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestMissingAuthorizationHeader() {
	w := s.changeRequest(`{"studentId":"student_1","newPriceId":"price_pro"}`, false)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Nil(s.service.lastReq)
}

func (s *RouterSuite) TestMalformedAuthorizationHeader() {
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions/change", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestInvalidToken() {
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions/change", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Nil(s.service.lastReq)
}

func (s *RouterSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/v1/subscriptions/change", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("Access-Control-Allow-Headers"))
}

func (s *RouterSuite) TestMalformedBody() {
	w := s.changeRequest(`{"studentId":`, true)
	s.Equal(http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	s.Contains(body, "error")
}

func (s *RouterSuite) TestSuccessfulChange() {
	changeDate := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	tier := "plan_core"
	s.service.resp = &dto.ModifySubscriptionResponse{
		Success:       true,
		Type:          types.ChangeTypeScheduled,
		Message:       "Your subscription will change to Core on March 31, 2026.",
		ScheduledDate: &changeDate,
		ScheduleID:    "sub_sched_1",
		ScheduledTier: &tier,
		Subscription: dto.SubscriptionInfo{
			ID:               "sub_1",
			Status:           "active",
			CurrentPeriodEnd: "2026-03-31T00:00:00Z",
		},
	}

	w := s.changeRequest(`{"studentId":"student_1","newPriceId":"price_core"}`, true)
	s.Equal(http.StatusOK, w.Code)

	// The authenticated caller id reached the service context.
	s.Equal("parent_1", types.GetUserID(s.service.lastCtx))
	s.Equal("student_1", s.service.lastReq.StudentID)
	s.Equal("price_core", s.service.lastReq.NewPriceID)

	var body map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(true, body["success"])
	s.Equal("scheduled", body["type"])
	s.Equal("sub_sched_1", body["scheduleId"])
}

func (s *RouterSuite) TestErrorStatusMapping() {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "validation",
			err:    ierr.NewError("newPriceId is required").WithHint("Please provide a valid price ID").Mark(ierr.ErrValidation),
			status: http.StatusBadRequest,
		},
		{
			name:   "same plan",
			err:    ierr.NewError("subscription already on requested price").WithHint("You are already on this plan").Mark(ierr.ErrInvalidOperation),
			status: http.StatusBadRequest,
		},
		{
			name:   "permission denied",
			err:    ierr.NewError("student not linked to caller").WithHint("You are not allowed to modify this student's subscription").Mark(ierr.ErrPermissionDenied),
			status: http.StatusForbidden,
		},
		{
			name:   "not found",
			err:    ierr.NewError("no billing subscription attached").WithHint("No active subscription found for this student").Mark(ierr.ErrNotFound),
			status: http.StatusNotFound,
		},
		{
			name:   "provider failure",
			err:    ierr.NewError("billing provider unavailable").WithHint("Could not reach the billing provider").Mark(ierr.ErrIntegration),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.err = tt.err
			w := s.changeRequest(`{"studentId":"student_1","newPriceId":"price_core"}`, true)
			s.Equal(tt.status, w.Code)

			var body map[string]any
			require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
			s.NotEmpty(body["error"])
		})
	}
}
