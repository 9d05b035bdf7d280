package service

import (
	"context"
	"errors"
	"fmt"

	"warmbed/internal/models"
	"warmbed/internal/repository"
	"warmbed/internal/schedule"
)

// ScheduleService reads and edits a profile's sleep schedule. Edits are
// validated strictly here; the reconciler stays tolerant of whatever ends
// up in storage.
type ScheduleService struct {
	profiles repository.ProfileRepo
}

func NewScheduleService(profiles repository.ProfileRepo) *ScheduleService {
	return &ScheduleService{profiles: profiles}
}

var ErrProfileNotFound = errors.New("profile not found")

// Get returns the profile's resolved schedule: the sleep window plus the
// stages that would actually drive the device (custom or derived defaults).
func (s *ScheduleService) Get(ctx context.Context, profileID int) (models.ScheduleView, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return models.ScheduleView{}, err
	}
	if p == nil {
		return models.ScheduleView{}, ErrProfileNotFound
	}

	bedMin, err := schedule.ParseClock(p.BedTime)
	if err != nil {
		return models.ScheduleView{}, fmt.Errorf("stored bed time: %w", err)
	}
	wakeMin, err := schedule.ParseClock(p.WakeTime)
	if err != nil {
		return models.ScheduleView{}, fmt.Errorf("stored wake time: %w", err)
	}

	stages, fallbackErr := schedule.StagesFor(p.CustomStages, bedMin, wakeMin)
	return models.ScheduleView{
		ProfileID: p.ID,
		BedTime:   p.BedTime,
		WakeTime:  p.WakeTime,
		Stages:    schedule.ViewStages(stages),
		Custom:    p.CustomStages != "" && fallbackErr == nil,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

// Update validates and persists edited schedule fields. Unlike the
// reconciler's run-time fallback, a malformed custom stage list is rejected
// here so bad data never enters storage through the API.
func (s *ScheduleService) Update(ctx context.Context, profileID int, upd models.ScheduleUpdate) error {
	bedMin, err := schedule.ParseClock(upd.BedTime)
	if err != nil {
		return fmt.Errorf("bed time: %w", err)
	}
	wakeMin, err := schedule.ParseClock(upd.WakeTime)
	if err != nil {
		return fmt.Errorf("wake time: %w", err)
	}
	if bedMin == wakeMin {
		return errors.New("bed time and wake time must differ")
	}
	if upd.CustomStages != "" {
		if _, err := schedule.StagesFor(upd.CustomStages, bedMin, wakeMin); err != nil {
			return fmt.Errorf("custom stages: %w", err)
		}
	}

	if err := s.profiles.UpdateSchedule(ctx, profileID, upd); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}
