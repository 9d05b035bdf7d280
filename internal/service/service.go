package service

import (
	"context"
	"time"

	"warmbed/internal/logger"
	"warmbed/internal/models"
	"warmbed/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Reconciliation runs reconciliation passes over all profiles.
type Reconciliation interface {
	Run(ctx context.Context, opts RunOptions) (RunSummary, error)
}

// Schedules exposes read/update access to a profile's sleep schedule.
type Schedules interface {
	Get(ctx context.Context, profileID int) (models.ScheduleView, error)
	Update(ctx context.Context, profileID int, upd models.ScheduleUpdate) error
}

// EventLog exposes the reconciliation audit log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ReconcileEvent, error)
}

// DeviceAPI is the remote device cloud: observed state, heating commands,
// and credential refresh. Every call may fail transiently and is wrapped by
// the retry executor inside the reconciler.
type DeviceAPI interface {
	GetState(ctx context.Context, token, deviceID string) (models.DeviceState, error)
	TurnOn(ctx context.Context, token, deviceID string) error
	TurnOff(ctx context.Context, token, deviceID string) error
	SetLevel(ctx context.Context, token, deviceID string, level int) error
	RefreshToken(ctx context.Context, refreshToken, userID string) (models.DeviceCredential, error)
}

// RunOptions controls a single reconciliation pass. A non-nil SimulatedTime
// switches the pass into simulation mode: actions are planned but not
// executed and expired credentials are not refreshed.
type RunOptions struct {
	SimulatedTime *time.Time
}

// RunSummary is the per-pass outcome returned to the scheduler/CLI.
type RunSummary struct {
	Profiles   int `json:"profiles"`
	Reconciled int `json:"reconciled"` // profiles with at least one action planned
	Skipped    int `json:"skipped"`    // inactive schedule or device already on target
	Failed     int `json:"failed"`
}

// LogFilter narrows event listing by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "INACTIVE", "ACTION", "SKIPPED", "ERROR"
}

// AuthConfig carries the JWT settings read from configuration.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// RetryConfig bounds the per-command retry executor.
type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration

	// Retryable decides whether a failure is worth another attempt; nil
	// retries everything.
	Retryable func(error) bool
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Reconciliation
	Schedules
	EventLog
	Authorization
}

// NewService wires the repository layer and the device client into the
// concrete services.
func NewService(repos *repository.Repository, device DeviceAPI, auth AuthConfig, retry RetryConfig, log *logger.Logger) *Service {
	return &Service{
		Reconciliation: NewReconcileService(repos.Profiles, repos.Events, device, NewRetryer(retry), log),
		Schedules:      NewScheduleService(repos.Profiles),
		EventLog:       NewEventLogService(repos.Events),
		Authorization:  NewAuthService(repos.Auth, auth),
	}
}
