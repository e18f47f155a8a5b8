package tracker

// IsDueOn reports whether it is scheduled on date.
//
// Nothing is due before its start date. A one-off is due on its start date
// and on any date it was completed. A recurring item is due on its start date
// and on every date whose weekday label is in RecurrenceDays.
func IsDueOn(it Item, date Date) bool {
	if date < it.StartDate {
		return false
	}
	if date == it.StartDate {
		return true
	}
	if it.Kind == KindOneOff {
		return it.CompletedOn(date)
	}
	return it.HasDay(WeekdayName(date.Weekday()))
}

// IsActionable reports whether it shows up on the agenda for date, which is
// where progress can be recorded. Pending one-offs are actionable on any date.
func IsActionable(it Item, date Date) bool {
	if it.Kind == KindOneOff {
		return it.GlobalStatus == StatusPending || it.CompletedOn(date)
	}
	return date >= it.StartDate && IsDueOn(it, date)
}
