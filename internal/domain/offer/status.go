package offer

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusExpired   Status = "expired"
)

// allowed lifecycle moves; edits back to pending are handled by Offer.Edit
var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusActive, StatusPending},
	StatusRejected:  {StatusPending},
	StatusActive:    {StatusSuspended, StatusExpired, StatusPending},
	StatusSuspended: {StatusActive},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusActive, StatusSuspended, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable statuses, subject to the edit window.
func (s Status) IsEditable() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusActive:
		return true
	default:
		return false
	}
}
