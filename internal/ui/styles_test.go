package ui

import (
	"strings"
	"testing"

	"zenflow/internal/config"

	"github.com/charmbracelet/lipgloss"
)

func TestNewStyles_UsesThemeColors(t *testing.T) {
	styles := NewStylesFromTheme(&config.ThemeConfig{
		Primary: "#FF0000",
		Accent:  "#00FF00",
		Muted:   "#0000FF",
	})

	if styles.ColorPrimary != lipgloss.Color("#FF0000") {
		t.Errorf("ColorPrimary = %v, want #FF0000", styles.ColorPrimary)
	}
	if styles.ColorAccent != lipgloss.Color("#00FF00") {
		t.Errorf("ColorAccent = %v, want #00FF00", styles.ColorAccent)
	}
	if styles.ColorMuted != lipgloss.Color("#0000FF") {
		t.Errorf("ColorMuted = %v, want #0000FF", styles.ColorMuted)
	}
}

func TestNewStyles_UsesDefaults(t *testing.T) {
	styles := NewStylesFromTheme(&config.ThemeConfig{})

	if styles.ColorPrimary != lipgloss.Color("#0F172A") {
		t.Errorf("ColorPrimary = %v, want default #0F172A", styles.ColorPrimary)
	}
	if styles.ColorAccent != lipgloss.Color("#10B981") {
		t.Errorf("ColorAccent = %v, want default #10B981", styles.ColorAccent)
	}
	if styles.ColorMuted != lipgloss.Color("#6B7280") {
		t.Errorf("ColorMuted = %v, want default #6B7280", styles.ColorMuted)
	}
}

func TestNewStyles_ComponentStylesFollowAccent(t *testing.T) {
	styles := NewStylesFromTheme(&config.ThemeConfig{Accent: "#FF0000"})

	if styles.TitleStyle.GetBackground() != lipgloss.Color("#FF0000") {
		t.Error("TitleStyle should use the accent color for background")
	}
	if styles.PaneFocusedStyle.GetBorderTopForeground() != lipgloss.Color("#FF0000") {
		t.Error("PaneFocusedStyle should use the accent color for its border")
	}
	if styles.CalendarSelectedStyle.GetBackground() != lipgloss.Color("#FF0000") {
		t.Error("CalendarSelectedStyle should use the accent color for background")
	}
}

func TestNewStyles_TrimsThemeValues(t *testing.T) {
	styles := NewStylesFromTheme(&config.ThemeConfig{Primary: "  ", Muted: " #123456 "})

	if styles.ColorPrimary != lipgloss.Color("#0F172A") {
		t.Errorf("blank primary = %v, want default", styles.ColorPrimary)
	}
	if styles.ColorMuted != lipgloss.Color("#123456") {
		t.Errorf("ColorMuted = %v, want #123456", styles.ColorMuted)
	}
}

func TestRenderHelp(t *testing.T) {
	setupTest(t)

	got := createTestStyles().RenderHelp("a", "add", "x", "delete", "dangling")
	if got != "[a] add  [x] delete" {
		t.Errorf("RenderHelp = %q", got)
	}
	if strings.Contains(got, "dangling") {
		t.Error("unpaired key rendered")
	}
}
