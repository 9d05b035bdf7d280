package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"warmbed/internal/models"
	"warmbed/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockReconciliation struct {
	summary  service.RunSummary
	err      error
	runCalls int
	lastOpts service.RunOptions
}

func (m *mockReconciliation) Run(ctx context.Context, opts service.RunOptions) (service.RunSummary, error) {
	m.runCalls++
	m.lastOpts = opts
	return m.summary, m.err
}

type mockSchedules struct {
	view       models.ScheduleView
	getErr     error
	updateErr  error
	lastGetID  int
	lastUpdID  int
	lastUpdate models.ScheduleUpdate
}

func (m *mockSchedules) Get(ctx context.Context, profileID int) (models.ScheduleView, error) {
	m.lastGetID = profileID
	return m.view, m.getErr
}
func (m *mockSchedules) Update(ctx context.Context, profileID int, upd models.ScheduleUpdate) error {
	m.lastUpdID = profileID
	m.lastUpdate = upd
	return m.updateErr
}

type mockEventLog struct {
	resp     []models.ReconcileEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ReconcileEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
