package reservation

type Status string

const (
	StatusRequested       Status = "requested"
	StatusConfirmed       Status = "confirmed"
	StatusCompleted       Status = "completed"
	StatusCancelledByUser Status = "cancelled_by_user"
	StatusCancelledByShop Status = "cancelled_by_shop"
	StatusNoShow          Status = "no_show"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusCompleted,
		StatusCancelledByUser, StatusCancelledByShop, StatusNoShow:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelledByUser, StatusCancelledByShop, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsLive reports whether the reservation still occupies its time slot.
func (s Status) IsLive() bool {
	return s == StatusRequested || s == StatusConfirmed
}

var transitions = map[Status][]Status{
	StatusRequested: {StatusConfirmed, StatusCancelledByUser, StatusCancelledByShop},
	StatusConfirmed: {StatusCompleted, StatusCancelledByUser, StatusCancelledByShop, StatusNoShow},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
