package alert

import "fleetwatch/internal/model"

// transitions is the single authority on alert status changes. Detector
// deactivation and the manual-close endpoint both go through it.
var transitions = map[model.AlertStatus][]model.AlertStatus{
	model.AlertInactive:       {model.AlertActive},
	model.AlertActive:         {model.AlertInactive, model.AlertManuallyClosed},
	model.AlertManuallyClosed: {},
}

// closableKinds lists the alarm kinds whose alerts an operator may close
// manually. Event-record kinds (geofence, reached-stop) are excluded.
var closableKinds = map[model.AlarmKind]bool{
	model.KindStoppage:          true,
	model.KindOverspeeding:      true,
	model.KindContinuousDriving: true,
	model.KindRouteDeviation:    true,
}

// CanTransition reports whether an alert may move from one status to another.
func CanTransition(from, to model.AlertStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
