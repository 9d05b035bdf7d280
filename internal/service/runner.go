package service

import (
	"context"
	"fmt"
	"time"

	"warmbed/internal/logger"
	"warmbed/internal/models"
	"warmbed/internal/repository"
	"warmbed/internal/schedule"
)

// ReconcileService runs one reconciliation pass over all profiles: for each
// profile it resolves the active temperature stage, compares it against the
// observed device state, and issues the minimal corrective commands through
// the retry executor. Profiles are independent; one failure never aborts
// the rest of the pass.
type ReconcileService struct {
	profiles repository.ProfileRepo
	events   repository.EventRepo
	device   DeviceAPI
	retry    *Retryer
	log      *logger.Logger

	// now is replaced in tests for deterministic clocks.
	now func() time.Time
}

func NewReconcileService(profiles repository.ProfileRepo, events repository.EventRepo, device DeviceAPI, retry *Retryer, log *logger.Logger) *ReconcileService {
	return &ReconcileService{
		profiles: profiles,
		events:   events,
		device:   device,
		retry:    retry,
		log:      log,
		now:      time.Now,
	}
}

// Event types recorded in the audit log.
const (
	eventInactive = "INACTIVE"
	eventAction   = "ACTION"
	eventSkipped  = "SKIPPED"
	eventError    = "ERROR"
)

// Run executes one pass. Failing to read the profile list is fatal and
// returned to the caller; every per-profile failure is logged, recorded,
// and skipped. In simulation mode (SimulatedTime set) actions are planned
// and logged but never executed, and credentials are not refreshed.
func (s *ReconcileService) Run(ctx context.Context, opts RunOptions) (RunSummary, error) {
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("read profile list: %w", err)
	}

	simulated := opts.SimulatedTime != nil
	now := s.now()
	if simulated {
		now = *opts.SimulatedTime
	}

	summary := RunSummary{Profiles: len(profiles)}
	for i := range profiles {
		p := profiles[i]
		acted, err := s.runProfile(ctx, p, now, simulated)
		if err != nil {
			summary.Failed++
			s.log.Errorw("profile_reconcile_failed", "profile_id", p.ID, "device_id", p.DeviceID, "err", err)
			s.recordEvent(ctx, p.ID, eventError, err.Error(), nil)
			continue
		}
		if acted {
			summary.Reconciled++
		} else {
			summary.Skipped++
		}
	}

	s.log.Infow("reconcile_pass_done",
		"profiles", summary.Profiles,
		"reconciled", summary.Reconciled,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"simulated", simulated,
	)
	return summary, nil
}

// runProfile reconciles a single profile. The returned bool reports whether
// any corrective action was planned.
func (s *ReconcileService) runProfile(ctx context.Context, p models.UserProfile, now time.Time, simulated bool) (bool, error) {
	localNow := now.In(s.location(p))

	bedMin, err := schedule.ParseClock(p.BedTime)
	if err != nil {
		return false, fmt.Errorf("bed time: %w", err)
	}
	wakeMin, err := schedule.ParseClock(p.WakeTime)
	if err != nil {
		return false, fmt.Errorf("wake time: %w", err)
	}

	stages, err := schedule.StagesFor(p.CustomStages, bedMin, wakeMin)
	if err != nil {
		// Malformed custom stages downgrade to the derived defaults; this
		// is a warning, never a per-profile failure.
		s.log.Warnw("custom_stages_fallback", "profile_id", p.ID, "err", err)
	}

	level, active := schedule.Evaluate(bedMin, wakeMin, stages, localNow)
	target := Target{Active: active, Level: level}

	token := p.AccessToken
	if !simulated && p.CredentialExpired(now) {
		cred, err := s.refreshCredential(ctx, p)
		if err != nil {
			return false, fmt.Errorf("refresh credential: %w", err)
		}
		token = cred.AccessToken
	}

	var state models.DeviceState
	err = s.retry.Do(ctx, "get device state", func(ctx context.Context) error {
		var derr error
		state, derr = s.device.GetState(ctx, token, p.DeviceID)
		return derr
	})
	if err != nil {
		return false, err
	}

	actions := PlanActions(target, state)
	if len(actions) == 0 {
		s.logNoAction(ctx, p, target, state)
		return false, nil
	}

	for _, a := range actions {
		if simulated {
			s.log.Infow("action_planned_dry_run", "profile_id", p.ID, "device_id", p.DeviceID,
				"action", a.Type, "level", a.Level)
			continue
		}
		if err := s.execute(ctx, token, p.DeviceID, a); err != nil {
			return false, err
		}
		s.log.Infow("action_taken", "profile_id", p.ID, "device_id", p.DeviceID,
			"action", a.Type, "level", a.Level)
	}
	s.recordEvent(ctx, p.ID, eventAction, describeActions(target, actions), map[string]any{
		"actions":   actions,
		"simulated": simulated,
	})
	return true, nil
}

// execute issues one device command through the retry executor.
func (s *ReconcileService) execute(ctx context.Context, token, deviceID string, a Action) error {
	switch a.Type {
	case ActionTurnOn:
		return s.retry.Do(ctx, "turn on", func(ctx context.Context) error {
			return s.device.TurnOn(ctx, token, deviceID)
		})
	case ActionTurnOff:
		return s.retry.Do(ctx, "turn off", func(ctx context.Context) error {
			return s.device.TurnOff(ctx, token, deviceID)
		})
	case ActionSetLevel:
		return s.retry.Do(ctx, "set level", func(ctx context.Context) error {
			return s.device.SetLevel(ctx, token, deviceID, a.Level)
		})
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// refreshCredential exchanges the refresh token and persists the result so
// the next pass starts from a valid credential.
func (s *ReconcileService) refreshCredential(ctx context.Context, p models.UserProfile) (models.DeviceCredential, error) {
	var cred models.DeviceCredential
	err := s.retry.Do(ctx, "refresh token", func(ctx context.Context) error {
		var rerr error
		cred, rerr = s.device.RefreshToken(ctx, p.RefreshToken, fmt.Sprintf("%d", p.ID))
		return rerr
	})
	if err != nil {
		return models.DeviceCredential{}, err
	}
	if err := s.profiles.UpdateCredential(ctx, p.ID, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt); err != nil {
		return models.DeviceCredential{}, fmt.Errorf("persist credential: %w", err)
	}
	s.log.Infow("credential_refreshed", "profile_id", p.ID, "expires_at", cred.ExpiresAt)
	return cred, nil
}

// logNoAction records why a profile needed nothing this pass.
func (s *ReconcileService) logNoAction(ctx context.Context, p models.UserProfile, target Target, state models.DeviceState) {
	if !target.Active {
		s.log.Infow("schedule_inactive", "profile_id", p.ID, "device_id", p.DeviceID)
		s.recordEvent(ctx, p.ID, eventInactive, "no schedule active, device off", nil)
		return
	}
	s.log.Infow("action_skipped", "profile_id", p.ID, "device_id", p.DeviceID,
		"level", target.Level)
	s.recordEvent(ctx, p.ID, eventSkipped, "device already at target", map[string]any{
		"level": state.HeatingLevel,
	})
}

// recordEvent appends to the audit log; persistence problems must never
// fail a reconciliation, so they are only logged.
func (s *ReconcileService) recordEvent(ctx context.Context, profileID int, typ, msg string, meta map[string]any) {
	err := s.events.Append(ctx, models.ReconcileEvent{
		ProfileID:   profileID,
		Type:        typ,
		Description: msg,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Warnw("event_append_failed", "profile_id", profileID, "type", typ, "err", err)
	}
}

// location resolves the profile's time zone, falling back to server-local.
func (s *ReconcileService) location(p models.UserProfile) *time.Location {
	if p.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		s.log.Warnw("invalid_time_zone", "profile_id", p.ID, "time_zone", p.TimeZone)
		return time.Local
	}
	return loc
}

func describeActions(target Target, actions []Action) string {
	if !target.Active {
		return "schedule inactive, heating turned off"
	}
	if len(actions) == 2 {
		return fmt.Sprintf("heating turned on at level %d", target.Level)
	}
	return fmt.Sprintf("heating level set to %d", target.Level)
}
