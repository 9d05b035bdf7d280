package models

import "time"

// DeviceState is the observed heating state of a device. It is mutated only
// by the remote device API; this service treats it as read-only input.
type DeviceState struct {
	IsHeating    bool `json:"is_heating"`
	HeatingLevel int  `json:"heating_level"`
}

// DeviceCredential is a refreshed token set as returned by the device cloud.
type DeviceCredential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
