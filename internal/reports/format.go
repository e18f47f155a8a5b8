package reports

import (
	"encoding/json"
	"fmt"
)

// Output formats accepted by Format.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Format renders a *DailyReport or *WeeklyReport as Markdown or indented
// JSON. JSON output ends with a newline.
func Format(report any, format string) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", fmt.Errorf("formatting JSON: %w", err)
		}
		return string(data) + "\n", nil
	case FormatMarkdown, "md":
		switch r := report.(type) {
		case *DailyReport:
			return FormatDailyMarkdown(r), nil
		case *WeeklyReport:
			return FormatWeeklyMarkdown(r), nil
		}
		return "", fmt.Errorf("unsupported report type %T", report)
	}
	return "", fmt.Errorf("invalid format %q, use 'markdown' or 'json'", format)
}
