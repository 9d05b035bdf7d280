package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"warmbed/internal/models"
)

type ProfileSQLite struct {
	db *sql.DB
}

func NewProfileSQLite(db *sql.DB) *ProfileSQLite {
	return &ProfileSQLite{db: db}
}

// Ensure implementation of ProfileRepo interface at compile time.
var _ ProfileRepo = (*ProfileSQLite)(nil)

const (
	profileColumns = `id, email, device_id, time_zone, bed_time, wake_time,
		custom_stages, access_token, refresh_token, token_expires_at, updated_at`

	selectAllProfilesSQL = `SELECT ` + profileColumns + ` FROM profiles ORDER BY id ASC`
	selectProfileByIDSQL = `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`
	updateCredentialSQL  = `UPDATE profiles SET access_token = ?, refresh_token = ?, token_expires_at = ? WHERE id = ?`
	updateScheduleSQL    = `UPDATE profiles SET bed_time = ?, wake_time = ?, custom_stages = ?, updated_at = ? WHERE id = ?`
)

// ErrProfileNotFound is returned when an update targets a missing profile.
var ErrProfileNotFound = errors.New("profile not found")

// ListAll returns every profile. A failure here is fatal to a
// reconciliation run, so the error is returned unwrapped by callers.
func (r *ProfileSQLite) ListAll(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx, selectAllProfilesSQL)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]models.UserProfile, 0, 16)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// GetByID fetches one profile. Returns (nil, nil) when it does not exist.
func (r *ProfileSQLite) GetByID(ctx context.Context, id int) (*models.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, selectProfileByIDSQL, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select profile %d: %w", id, err)
	}
	return &p, nil
}

// UpdateCredential persists a refreshed token set for one profile.
func (r *ProfileSQLite) UpdateCredential(ctx context.Context, id int, accessToken, refreshToken string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, updateCredentialSQL, accessToken, refreshToken, expiresAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update credential for profile %d: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateSchedule persists edited schedule fields and bumps updated_at.
func (r *ProfileSQLite) UpdateSchedule(ctx context.Context, id int, upd models.ScheduleUpdate) error {
	res, err := r.db.ExecContext(ctx, updateScheduleSQL,
		upd.BedTime, upd.WakeTime, upd.CustomStages, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update schedule for profile %d: %w", id, err)
	}
	return requireRow(res, id)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (models.UserProfile, error) {
	var (
		p         models.UserProfile
		expiresAt sql.NullTime
	)
	if err := s.Scan(
		&p.ID,
		&p.Email,
		&p.DeviceID,
		&p.TimeZone,
		&p.BedTime,
		&p.WakeTime,
		&p.CustomStages,
		&p.AccessToken,
		&p.RefreshToken,
		&expiresAt,
		&p.UpdatedAt,
	); err != nil {
		return models.UserProfile{}, err
	}
	if expiresAt.Valid {
		p.TokenExpiresAt = expiresAt.Time.UTC()
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func requireRow(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for profile %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("profile %d: %w", id, ErrProfileNotFound)
	}
	return nil
}
