package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"warmbed/internal/models"
)

func scheduleFixtureRepo() *fakeProfileRepo {
	p := baseProfile(1)
	p.UpdatedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return &fakeProfileRepo{profiles: []models.UserProfile{p}}
}

func TestScheduleService_Get_DerivedDefaults(t *testing.T) {
	svc := NewScheduleService(scheduleFixtureRepo())

	view, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Custom {
		t.Fatalf("expected derived defaults, got custom")
	}
	if len(view.Stages) != 3 {
		t.Fatalf("expected 3 derived stages, got %d", len(view.Stages))
	}
	// bed 23:00 -> mid stage at 00:00, final at 05:00 (wake 07:00 - 2h).
	if view.Stages[1].Time != "00:00" || view.Stages[2].Time != "05:00" {
		t.Fatalf("stages = %+v", view.Stages)
	}
}

func TestScheduleService_Get_CustomStages(t *testing.T) {
	repo := scheduleFixtureRepo()
	repo.profiles[0].CustomStages = `[{"time":"23:30","temp":19,"name":"wind down"}]`
	svc := NewScheduleService(repo)

	view, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !view.Custom {
		t.Fatalf("expected custom schedule")
	}
	if len(view.Stages) != 1 || view.Stages[0].Time != "23:30" || view.Stages[0].Temp != 19 {
		t.Fatalf("stages = %+v", view.Stages)
	}
}

func TestScheduleService_Get_MissingProfile(t *testing.T) {
	svc := NewScheduleService(scheduleFixtureRepo())

	_, err := svc.Get(context.Background(), 404)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestScheduleService_Update_RejectsInvalidInput(t *testing.T) {
	svc := NewScheduleService(scheduleFixtureRepo())

	cases := []struct {
		name string
		upd  models.ScheduleUpdate
	}{
		{"bad bed time", models.ScheduleUpdate{BedTime: "25:00", WakeTime: "07:00"}},
		{"bad wake time", models.ScheduleUpdate{BedTime: "23:00", WakeTime: "late"}},
		{"equal times", models.ScheduleUpdate{BedTime: "23:00", WakeTime: "23:00"}},
		{"bad stages", models.ScheduleUpdate{BedTime: "23:00", WakeTime: "07:00", CustomStages: "oops"}},
	}
	for _, tc := range cases {
		if err := svc.Update(context.Background(), 1, tc.upd); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestScheduleService_Update_AcceptsOvernightWindow(t *testing.T) {
	svc := NewScheduleService(scheduleFixtureRepo())

	err := svc.Update(context.Background(), 1, models.ScheduleUpdate{
		BedTime:      "23:30",
		WakeTime:     "06:45",
		CustomStages: `[{"time":"23:30","temp":21},{"time":"03:00","temp":18}]`,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
}
