package models

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Task lifecycle states. A task starts Unassigned, becomes Pending once an
// employee is assigned, and either progresses to Completed/Verified or ends
// in one of the contact-outcome states.
const (
	StatusUnassigned      TaskStatus = "Unassigned"
	StatusPending         TaskStatus = "Pending"
	StatusCompleted       TaskStatus = "Completed"
	StatusVerified        TaskStatus = "Verified"
	StatusLeftJob         TaskStatus = "LeftJob"
	StatusNotSharingInfo  TaskStatus = "NotSharingInfo"
	StatusNotPicking      TaskStatus = "NotPicking"
	StatusSwitchOff       TaskStatus = "SwitchOff"
	StatusIncorrectNumber TaskStatus = "IncorrectNumber"
	StatusWrongAddress    TaskStatus = "WrongAddress"
)

// transitions is the allowed status-transition table consulted by the
// dispatch service. Unassigned->Pending is intentionally absent: that edge
// exists only through assignment, never through a bare status update.
var transitions = map[TaskStatus][]TaskStatus{
	StatusPending: {
		StatusCompleted,
		StatusLeftJob,
		StatusNotSharingInfo,
		StatusNotPicking,
		StatusSwitchOff,
		StatusIncorrectNumber,
		StatusWrongAddress,
	},
	StatusCompleted: {StatusVerified},
}

// AllStatuses lists every valid task status.
func AllStatuses() []TaskStatus {
	return []TaskStatus{
		StatusUnassigned, StatusPending, StatusCompleted, StatusVerified,
		StatusLeftJob, StatusNotSharingInfo, StatusNotPicking,
		StatusSwitchOff, StatusIncorrectNumber, StatusWrongAddress,
	}
}

// IsValid reports whether s is a member of the status enum.
func (s TaskStatus) IsValid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsOutcome reports whether s is one of the failed-contact outcome states.
// Outcome states have no outgoing status transitions; re-assigning the task
// is the only way to bring it back to Pending.
func (s TaskStatus) IsOutcome() bool {
	switch s {
	case StatusLeftJob, StatusNotSharingInfo, StatusNotPicking,
		StatusSwitchOff, StatusIncorrectNumber, StatusWrongAddress:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the transition table allows moving from s
// to next via a status update.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}
