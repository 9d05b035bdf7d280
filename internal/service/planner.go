package service

import "warmbed/internal/models"

// ActionType identifies a device command.
type ActionType string

const (
	ActionTurnOn   ActionType = "turn_on"
	ActionTurnOff  ActionType = "turn_off"
	ActionSetLevel ActionType = "set_level"
)

// Action is one corrective device command. Level is only meaningful for
// set_level.
type Action struct {
	Type  ActionType `json:"type"`
	Level int        `json:"level,omitempty"`
}

// Target is the evaluated schedule outcome for one profile at one instant.
type Target struct {
	Active bool
	Level  int
}

// PlanActions compares the schedule target against the observed device
// state and returns the minimal command sequence that moves the device to
// the target. It performs no I/O; execution order matters (turn_on must
// precede set_level) and is preserved by slice order.
func PlanActions(target Target, state models.DeviceState) []Action {
	if !target.Active {
		if state.IsHeating {
			return []Action{{Type: ActionTurnOff}}
		}
		return nil
	}
	if !state.IsHeating {
		// The level is set unconditionally after turning on: a freshly
		// started device may report a stale level.
		return []Action{
			{Type: ActionTurnOn},
			{Type: ActionSetLevel, Level: target.Level},
		}
	}
	if state.HeatingLevel != target.Level {
		return []Action{{Type: ActionSetLevel, Level: target.Level}}
	}
	return nil
}
