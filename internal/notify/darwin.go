//go:build darwin

package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type darwinNotifier struct{}

func newPlatformNotifier() Notifier {
	return darwinNotifier{}
}

func (darwinNotifier) Supported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

func (darwinNotifier) Notify(ctx context.Context, msg Message) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(msg.Body), escapeAppleScript(msg.Title))
	if msg.Sound {
		script += ` sound name "default"`
	}
	if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("osascript failed: %w", err)
	}
	return nil
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
