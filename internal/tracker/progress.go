package tracker

// RecordProgress applies one completion action to it on date and returns the
// new history together with the new global status. it is not modified.
//
// A completed day resets to zero. Otherwise a multi-repetition item advances
// by one (clamped at the target) and a single-repetition item completes. Only
// one-off items carry the day status into their global status.
func RecordProgress(it Item, date Date) (map[Date]DayState, Status) {
	current := it.Day(date)

	var next DayState
	switch {
	case current.DayStatus == StatusCompleted:
		next = DayState{RepetitionsDone: 0, DayStatus: StatusPending}
	case it.TargetRepetitions > 1:
		done := current.RepetitionsDone + 1
		if done >= it.TargetRepetitions {
			next = DayState{RepetitionsDone: it.TargetRepetitions, DayStatus: StatusCompleted}
		} else {
			next = DayState{RepetitionsDone: done, DayStatus: StatusPending}
		}
	default:
		next = DayState{RepetitionsDone: 1, DayStatus: StatusCompleted}
	}

	history := make(map[Date]DayState, len(it.History)+1)
	for k, v := range it.History {
		history[k] = v
	}
	history[date] = next

	status := it.GlobalStatus
	if it.Kind == KindOneOff {
		status = next.DayStatus
	}
	return history, status
}

// Apply returns a copy of it with one completion action applied on date.
func Apply(it Item, date Date) Item {
	out := it.Clone()
	out.History, out.GlobalStatus = RecordProgress(it, date)
	return out
}
