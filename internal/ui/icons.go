package ui

import "zenflow/internal/tracker"

var iconGlyphs = map[tracker.Icon]string{
	tracker.IconList:        "☰",
	tracker.IconPlus:        "+",
	tracker.IconCheck:       "✓",
	tracker.IconTrash:       "✗",
	tracker.IconSun:         "☀",
	tracker.IconMoon:        "☾",
	tracker.IconWater:       "≈",
	tracker.IconCoffee:      "♨",
	tracker.IconDumbbell:    "⚒",
	tracker.IconBenchPress:  "⚖",
	tracker.IconPill:        "⊕",
	tracker.IconSeed:        "✿",
	tracker.IconActivity:    "∿",
	tracker.IconZap:         "ϟ",
	tracker.IconBook:        "❑",
	tracker.IconBriefcase:   "▣",
	tracker.IconHeart:       "♥",
	tracker.IconStethoscope: "⚕",
	tracker.IconApple:       "●",
}

// Glyph returns the single-cell symbol drawn for icon. Unknown icons use the
// List glyph.
func Glyph(icon tracker.Icon) string {
	if g, ok := iconGlyphs[icon]; ok {
		return g
	}
	return iconGlyphs[tracker.IconList]
}
