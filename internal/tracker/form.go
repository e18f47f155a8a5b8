package tracker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen   = 200
	defaultColor  = "#0f172a"
	defaultTarget = 1
)

// Form carries the user-editable fields of an item.
type Form struct {
	Title             string   `json:"title"`
	Kind              Kind     `json:"kind,omitempty"`
	StartDate         Date     `json:"start_date,omitempty"`
	RecurrenceDays    []string `json:"recurrence_days,omitempty"`
	TargetRepetitions int      `json:"target_repetitions"`
	Category          string   `json:"category,omitempty"`
	Icon              string   `json:"icon,omitempty"`
	IconColor         string   `json:"icon_color,omitempty"`
}

// FormFor returns the form that reproduces the editable fields of it.
func FormFor(it Item) Form {
	return Form{
		Title:             it.Title,
		Kind:              it.Kind,
		StartDate:         it.StartDate,
		RecurrenceDays:    append([]string(nil), it.RecurrenceDays...),
		TargetRepetitions: it.TargetRepetitions,
		Category:          string(it.Category),
		Icon:              string(it.Icon),
		IconColor:         it.IconColor,
	}
}

// normalize validates f and returns the canonical field values. An empty
// StartDate becomes today. An empty Kind is inferred from the day list.
func (f Form) normalize(today Date) (Form, Category, Icon, error) {
	out := f
	out.Title = strings.TrimSpace(f.Title)
	if out.Title == "" {
		return Form{}, "", "", &ValidationError{Field: "title", Reason: "title is required"}
	}
	if utf8.RuneCountInString(out.Title) > maxTitleLen {
		return Form{}, "", "", &ValidationError{Field: "title", Reason: fmt.Sprintf("title too long (max %d)", maxTitleLen)}
	}
	if f.TargetRepetitions < 1 {
		return Form{}, "", "", &ValidationError{Field: "target_repetitions", Reason: "target must be at least 1"}
	}

	days, err := NormalizeWeekdays(f.RecurrenceDays)
	if err != nil {
		return Form{}, "", "", err
	}
	out.RecurrenceDays = days

	if f.Kind == "" {
		out.Kind = KindOneOff
		if len(days) > 0 {
			out.Kind = KindHabit
		}
	} else if out.Kind, err = ParseKind(string(f.Kind)); err != nil {
		return Form{}, "", "", err
	}
	if out.Kind == KindOneOff && len(days) > 0 {
		return Form{}, "", "", &ValidationError{Field: "recurrence_days", Reason: "one-off items cannot repeat"}
	}
	if len(out.RecurrenceDays) == 0 {
		out.RecurrenceDays = nil
	}

	if f.StartDate == "" {
		out.StartDate = today
	} else if out.StartDate, err = ParseDate(string(f.StartDate)); err != nil {
		return Form{}, "", "", &ValidationError{Field: "start_date", Reason: fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", f.StartDate)}
	}

	cat, err := ParseCategory(f.Category)
	if err != nil {
		return Form{}, "", "", err
	}
	icon, err := ParseIcon(f.Icon)
	if err != nil {
		return Form{}, "", "", err
	}

	out.IconColor = strings.ToLower(strings.TrimSpace(f.IconColor))
	if out.IconColor == "" {
		out.IconColor = defaultColor
	} else if !isHexColor(out.IconColor) {
		return Form{}, "", "", &ValidationError{Field: "icon_color", Reason: fmt.Sprintf("invalid colour %q (want #rrggbb)", f.IconColor)}
	}
	return out, cat, icon, nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

// reconcileHistory clamps history entries to target and recomputes each
// day's status so the ledger invariants hold after the target changes.
func reconcileHistory(history map[Date]DayState, target int) map[Date]DayState {
	if history == nil {
		return nil
	}
	out := make(map[Date]DayState, len(history))
	for date, st := range history {
		if st.RepetitionsDone > target {
			st.RepetitionsDone = target
		}
		if st.RepetitionsDone < 0 {
			st.RepetitionsDone = 0
		}
		st.DayStatus = StatusPending
		if st.RepetitionsDone == target {
			st.DayStatus = StatusCompleted
		}
		out[date] = st
	}
	return out
}

// singleCompletion drops every completed entry but the latest, so a one-off
// stays pinned to one completion date.
func singleCompletion(history map[Date]DayState) map[Date]DayState {
	var latest Date
	for date, st := range history {
		if st.DayStatus == StatusCompleted && date > latest {
			latest = date
		}
	}
	for date, st := range history {
		if st.DayStatus == StatusCompleted && date != latest {
			delete(history, date)
		}
	}
	return history
}

// oneOffStatus derives a one-off's global status from its history.
func oneOffStatus(history map[Date]DayState) Status {
	for _, st := range history {
		if st.DayStatus == StatusCompleted {
			return StatusCompleted
		}
	}
	return StatusPending
}
