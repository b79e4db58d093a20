package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// TerminalIndicator is a Sender for interactive use: every cue advances a
// spinner on the terminal. In CI it prints a single line instead.
type TerminalIndicator struct {
	mu          sync.Mutex
	out         io.Writer
	description string
	ci          bool
	bar         *progressbar.ProgressBar
	announced   bool
}

// NewTerminalIndicator returns an indicator writing to out. It falls back to
// plain line output when the CI environment variable is set.
func NewTerminalIndicator(out io.Writer, description string) *TerminalIndicator {
	return &TerminalIndicator{
		out:         out,
		description: description,
		ci:          os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "",
	}
}

// SendTyping advances the spinner. The chat id is ignored.
func (t *TerminalIndicator) SendTyping(_ context.Context, _ int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ci {
		if !t.announced {
			t.announced = true
			_, err := fmt.Fprintln(t.out, t.description)
			return err
		}
		return nil
	}

	if t.bar == nil {
		t.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(t.out),
			progressbar.OptionSetDescription(t.description),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	return t.bar.Add(1)
}

// Finish clears the spinner.
func (t *TerminalIndicator) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bar != nil {
		_ = t.bar.Finish()
		t.bar = nil
	}
}
