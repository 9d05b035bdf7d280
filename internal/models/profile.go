package models

import "time"

// UserProfile is one user's sleep schedule plus the device credential used
// to act on their behalf. Rows are read fresh from storage on every
// reconciliation pass; nothing here is cached between passes.
type UserProfile struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	DeviceID string `json:"device_id"`
	TimeZone string `json:"time_zone,omitempty"` // IANA name; empty means server-local

	BedTime      string `json:"bed_time"`  // "HH:MM"
	WakeTime     string `json:"wake_time"` // "HH:MM"; may be earlier than BedTime (overnight window)
	CustomStages string `json:"-"`         // raw JSON stage list; empty means derived defaults

	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`

	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialExpired reports whether the access token needs a refresh at the
// given instant.
func (p UserProfile) CredentialExpired(now time.Time) bool {
	return !p.TokenExpiresAt.IsZero() && now.After(p.TokenExpiresAt)
}

// TemperatureStage marks the heating level the device should hold from the
// given wall-clock time onward. Stage lists are not required to be sorted.
type TemperatureStage struct {
	Time string `json:"time"` // "HH:MM"
	Temp int    `json:"temp"`
	Name string `json:"name,omitempty"`
}

// ScheduleUpdate carries the editable schedule fields of a profile.
type ScheduleUpdate struct {
	BedTime      string `json:"bed_time"`
	WakeTime     string `json:"wake_time"`
	CustomStages string `json:"custom_stages,omitempty"`
}

// ScheduleView is the resolved schedule returned by the API: the sleep
// window plus the stages that would actually drive the device.
type ScheduleView struct {
	ProfileID int                `json:"profile_id"`
	BedTime   string             `json:"bed_time"`
	WakeTime  string             `json:"wake_time"`
	Stages    []TemperatureStage `json:"stages"`
	Custom    bool               `json:"custom"` // false when stages are the derived defaults
	UpdatedAt time.Time          `json:"updated_at"`
}
