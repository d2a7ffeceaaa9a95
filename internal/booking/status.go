package booking

import "github.com/clinicore/booking/internal/model"

// NonTerminalStatuses are the statuses that hold a doctor's time: these are
// the ones the double-booking check counts.
func NonTerminalStatuses() []model.AppointmentStatus {
	return []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusInProgress,
	}
}

// IsTerminal reports whether no further lifecycle transition is allowed out
// of s.
func IsTerminal(s model.AppointmentStatus) bool {
	switch s {
	case model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow:
		return true
	}
	return false
}

var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusPending: {
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
	},
	model.AppointmentStatusConfirmed: {
		model.AppointmentStatusInProgress,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
		// Reschedule re-confirms the same row with a new slot.
		model.AppointmentStatusConfirmed,
	},
	model.AppointmentStatusInProgress: {
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusConfirmed,
	},
}

// CanTransition reports whether the lifecycle allows from → to.
func CanTransition(from, to model.AppointmentStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
