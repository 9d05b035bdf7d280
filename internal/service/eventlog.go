package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"warmbed/internal/models"
	"warmbed/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ReconcileEvent, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	typ := strings.TrimSpace(strings.ToUpper(f.Type))
	return s.eventRepo.List(ctx, from, to, typ)
}
