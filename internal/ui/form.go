package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"zenflow/internal/config"
	"zenflow/internal/tracker"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formStep int

const (
	stepTitle formStep = iota
	stepKind
	stepStart
	stepDays
	stepTarget
	stepCategory
	stepIcon
	stepColor
	stepCount
)

type formField struct {
	label       string
	placeholder string
	field       string // ValidationError.Field reported for this step
	charLimit   int
}

var formFields = [stepCount]formField{
	stepTitle:    {"Title", "What do you want to track?", "title", 200},
	stepKind:     {"Kind", "habit, daily or oneoff (empty: from days)", "kind", 10},
	stepStart:    {"Start date", "YYYY-MM-DD", "start_date", 10},
	stepDays:     {"Days", "Seg,Qua,Sex", "recurrence_days", 40},
	stepTarget:   {"Target", "repetitions per day", "target_repetitions", 4},
	stepCategory: {"Category", "", "category", 20},
	stepIcon:     {"Icon", "", "icon", 20},
	stepColor:    {"Colour", "#rrggbb", "icon_color", 7},
}

// ItemForm is the multi-step add/edit dialog. It never writes anything
// itself: a completed form is handed back to the caller as a tracker.Form.
type ItemForm struct {
	open       bool
	editing    *tracker.Item
	step       formStep
	values     [stepCount]string
	input      textinput.Model
	err        string
	submitting bool
	width      int

	styles *Styles
	keys   InputKeyMap
}

// NewItemForm creates a closed form.
func NewItemForm(styles *Styles, keyCfg *config.KeysConfig) *ItemForm {
	ti := textinput.New()
	ti.Width = 40
	return &ItemForm{
		input:  ti,
		styles: styles,
		keys:   NewInputKeyMap(keyCfg),
	}
}

// Open starts the form. With edit set, every step is prefilled from the item;
// otherwise the start date defaults to date.
func (f *ItemForm) Open(date tracker.Date, edit *tracker.Item) tea.Cmd {
	f.open = true
	f.editing = nil
	f.step = stepTitle
	f.err = ""
	f.submitting = false

	if edit != nil {
		it := edit.Clone()
		f.editing = &it
		form := tracker.FormFor(it)
		f.values = [stepCount]string{
			stepTitle:    form.Title,
			stepKind:     string(form.Kind),
			stepStart:    string(form.StartDate),
			stepDays:     strings.Join(form.RecurrenceDays, ","),
			stepTarget:   strconv.Itoa(form.TargetRepetitions),
			stepCategory: form.Category,
			stepIcon:     form.Icon,
			stepColor:    form.IconColor,
		}
	} else {
		f.values = [stepCount]string{
			stepStart:    string(date),
			stepTarget:   "1",
			stepCategory: string(tracker.Categories[0]),
			stepIcon:     string(tracker.IconList),
		}
	}
	f.loadStep()
	return textinput.Blink
}

// Close discards the form.
func (f *ItemForm) Close() {
	f.open = false
	f.editing = nil
	f.submitting = false
	f.input.Blur()
}

// IsOpen reports whether the form is showing.
func (f *ItemForm) IsOpen() bool { return f.open }

// Editing returns the item being edited, or nil when adding.
func (f *ItemForm) Editing() *tracker.Item { return f.editing }

// SetWidth sets the dialog width.
func (f *ItemForm) SetWidth(width int) {
	f.width = width
	f.input.Width = max(10, min(50, width-12))
}

// Fail reopens a submitted form with err shown inline. Validation errors jump
// back to the step that produced them.
func (f *ItemForm) Fail(err error) {
	f.submitting = false
	f.err = err.Error()
	var ve *tracker.ValidationError
	if errors.As(err, &ve) {
		for step, fld := range formFields {
			if fld.field == ve.Field {
				f.step = formStep(step)
				break
			}
		}
	}
	f.loadStep()
}

// Update handles a key while the form is open. When the last step is
// confirmed it returns the completed form.
func (f *ItemForm) Update(msg tea.Msg) (tea.Cmd, *tracker.Form) {
	if !f.open || f.submitting {
		return nil, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.keys.Cancel):
			f.Close()
			return nil, nil
		case key.Matches(msg, f.keys.Confirm):
			return nil, f.confirmStep()
		case msg.Type == tea.KeyShiftTab:
			if f.step > stepTitle {
				f.values[f.step] = f.input.Value()
				f.step = f.prevStep(f.step)
				f.err = ""
				f.loadStep()
			}
			return nil, nil
		}
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd, nil
}

func (f *ItemForm) confirmStep() *tracker.Form {
	f.values[f.step] = strings.TrimSpace(f.input.Value())
	if err := f.checkStep(f.step); err != nil {
		f.err = err.Error()
		return nil
	}
	f.err = ""

	next := f.nextStep(f.step)
	if next < stepCount {
		f.step = next
		f.loadStep()
		return nil
	}

	form := f.build()
	f.submitting = true
	f.input.Blur()
	return &form
}

// nextStep skips the day list for one-off items.
func (f *ItemForm) nextStep(step formStep) formStep {
	step++
	if step == stepDays && f.isOneOff() {
		f.values[stepDays] = ""
		step++
	}
	return step
}

func (f *ItemForm) prevStep(step formStep) formStep {
	step--
	if step == stepDays && f.isOneOff() {
		step--
	}
	return step
}

func (f *ItemForm) isOneOff() bool {
	k, err := tracker.ParseKind(f.values[stepKind])
	return err == nil && k == tracker.KindOneOff
}

// checkStep validates one answer so mistakes surface before submitting.
func (f *ItemForm) checkStep(step formStep) error {
	v := f.values[step]
	switch step {
	case stepTitle:
		if v == "" {
			return errors.New("title is required")
		}
	case stepKind:
		if v != "" {
			if _, err := tracker.ParseKind(v); err != nil {
				return err
			}
		}
	case stepStart:
		if v != "" {
			if _, err := tracker.ParseDate(v); err != nil {
				return err
			}
		}
	case stepDays:
		if _, err := tracker.NormalizeWeekdays(splitDays(v)); err != nil {
			return err
		}
	case stepTarget:
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return errors.New("target must be a whole number of at least 1")
		}
	case stepCategory:
		if _, err := tracker.ParseCategory(v); err != nil {
			return err
		}
	case stepIcon:
		if _, err := tracker.ParseIcon(v); err != nil {
			return err
		}
	}
	return nil
}

func (f *ItemForm) build() tracker.Form {
	target, _ := strconv.Atoi(f.values[stepTarget])
	return tracker.Form{
		Title:             f.values[stepTitle],
		Kind:              tracker.Kind(f.values[stepKind]),
		StartDate:         tracker.Date(f.values[stepStart]),
		RecurrenceDays:    splitDays(f.values[stepDays]),
		TargetRepetitions: target,
		Category:          f.values[stepCategory],
		Icon:              f.values[stepIcon],
		IconColor:         f.values[stepColor],
	}
}

func (f *ItemForm) loadStep() {
	fld := formFields[f.step]
	f.input.Reset()
	f.input.CharLimit = fld.charLimit
	f.input.Placeholder = fld.placeholder
	switch f.step {
	case stepCategory:
		f.input.Placeholder = joinNames(tracker.Categories)
	case stepIcon:
		f.input.Placeholder = "List, Sun, Water, Book, ..."
	}
	f.input.SetValue(f.values[f.step])
	f.input.CursorEnd()
	f.input.Focus()
}

// View renders the dialog.
func (f *ItemForm) View() string {
	width := 60
	if f.width > 0 {
		width = min(60, max(24, f.width-4))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(f.styles.ColorAccent).
		Padding(1, 2).
		Width(width)

	var b strings.Builder
	title := "New item"
	if f.editing != nil {
		title = "Edit item"
	}
	b.WriteString(f.styles.PaneTitleStyle.Render(title))
	b.WriteString("\n\n")

	for step := stepTitle; step < f.step; step++ {
		if step == stepDays && f.isOneOff() {
			continue
		}
		value := f.values[step]
		if value == "" {
			value = "-"
		}
		b.WriteString(f.styles.ItemMetaStyle.Render(fmt.Sprintf("%-11s %s", formFields[step].label, truncateText(value, width-18))))
		b.WriteString("\n")
	}

	fld := formFields[f.step]
	b.WriteString(f.styles.InputPromptStyle.Render(fmt.Sprintf("%-11s ", fld.label)))
	b.WriteString(f.input.View())
	b.WriteString("\n")
	if f.step == stepIcon {
		if icon, err := tracker.ParseIcon(f.input.Value()); err == nil {
			b.WriteString(f.styles.ItemMetaStyle.Render("            " + Glyph(icon)))
			b.WriteString("\n")
		}
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(f.styles.ErrorStyle.Render(f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if f.submitting {
		b.WriteString(f.styles.StatLabelStyle.Render("Saving..."))
	} else {
		b.WriteString(f.styles.StatLabelStyle.Render(fmt.Sprintf("Step %d/%d", int(f.step)+1, int(stepCount))))
		b.WriteString("  ")
		b.WriteString(f.styles.RenderHelp("enter", "next", "shift+tab", "back", "esc", "cancel"))
	}
	return box.Render(b.String())
}

// splitDays accepts commas or spaces between day labels.
func splitDays(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func joinNames[T ~string](names []T) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
