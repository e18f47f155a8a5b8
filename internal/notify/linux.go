//go:build linux

package notify

import (
	"context"
	"fmt"
	"os/exec"
)

type linuxNotifier struct{}

func newPlatformNotifier() Notifier {
	return linuxNotifier{}
}

func (linuxNotifier) Supported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (linuxNotifier) Notify(ctx context.Context, msg Message) error {
	args := []string{"--app-name=zenflow"}
	// Sound depends on the notification daemon; the urgency hint is the
	// closest portable knob.
	if msg.Sound {
		args = append(args, "--urgency=normal")
	} else {
		args = append(args, "--urgency=low")
	}
	args = append(args, msg.Title, msg.Body)

	if err := exec.CommandContext(ctx, "notify-send", args...).Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}
