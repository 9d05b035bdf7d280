package repository

import (
	"context"
	"database/sql"
	"time"

	"warmbed/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ProfileRepo reads and updates user profiles. Profiles are always read
// fresh; the reconciler never caches them across passes.
type ProfileRepo interface {
	ListAll(ctx context.Context) ([]models.UserProfile, error)
	GetByID(ctx context.Context, id int) (*models.UserProfile, error)
	UpdateCredential(ctx context.Context, id int, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateSchedule(ctx context.Context, id int, upd models.ScheduleUpdate) error
}

// EventRepo is the append-only reconciliation audit log.
type EventRepo interface {
	Append(ctx context.Context, e models.ReconcileEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ReconcileEvent, error)
}

type Repository struct {
	Profiles ProfileRepo
	Events   EventRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Profiles: NewProfileSQLite(db),
		Events:   NewEventSQLite(db),
		Auth:     NewUserRepository(db),
	}
}
