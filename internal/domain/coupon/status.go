package coupon

type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusPurchased Status = "purchased"
	StatusUsed      Status = "used"
	StatusExpired   Status = "expired"
)

var transitions = map[Status][]Status{
	StatusAvailable: {StatusReserved, StatusExpired},
	StatusReserved:  {StatusAvailable, StatusPurchased},
	StatusPurchased: {StatusUsed},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusPurchased, StatusUsed, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusUsed || s == StatusExpired
}

// HasHolder reports whether a unit in this status must carry a holder.
func (s Status) HasHolder() bool {
	return s == StatusReserved || s == StatusPurchased || s == StatusUsed
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
