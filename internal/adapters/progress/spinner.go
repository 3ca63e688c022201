package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/shieldworks/protect/internal/usecase"
)

var (
	doneColor = color.New(color.FgGreen)
	skipColor = color.New(color.FgWhite, color.Faint)
	infoColor = color.New(color.FgCyan)
	errColor  = color.New(color.FgRed)
)

// SpinnerSink reports progress with a spinner on a terminal and as plain lines otherwise
type SpinnerSink struct {
	out     io.Writer
	spinner *spinner.Spinner
	start   time.Time
}

// NewSpinnerSink creates a sink writing to out. The spinner is only used when
// tty is true.
func NewSpinnerSink(out io.Writer, tty bool) *SpinnerSink {
	s := &SpinnerSink{out: out}
	if tty {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		s.spinner.HideCursor = false
	}
	return s
}

// ProvideProgressSink selects the sink for the invocation: nothing in JSON mode,
// a spinner on an interactive stderr.
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON {
		return NewNopSink()
	}
	tty := !cfg.NonInteractive && isatty.IsTerminal(os.Stderr.Fd())
	return NewSpinnerSink(os.Stderr, tty)
}

// OnProgress handles progress events
func (s *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	counter := ""
	if event.Total > 0 && event.Current > 0 {
		counter = fmt.Sprintf("[%d/%d] ", event.Current, event.Total)
	}

	if event.Spinner {
		s.start = time.Now()
		if s.spinner == nil {
			fmt.Fprintf(s.out, "%s%s...\n", counter, event.Message)
			return
		}
		s.spinner.Suffix = " " + counter + event.Message
		if !s.spinner.Active() {
			s.spinner.Start()
		}
		return
	}

	s.stop()
	switch event.Stage {
	case "unit_deployed", "edge_reconciled":
		elapsed := ""
		if !s.start.IsZero() {
			elapsed = fmt.Sprintf(" (%s)", time.Since(s.start).Round(time.Millisecond))
		}
		fmt.Fprintf(s.out, "%s %s%s%s\n", doneColor.Sprint("✓"), counter, event.Message, elapsed)
	case "unit_skipped":
		fmt.Fprintf(s.out, "%s %s\n", skipColor.Sprint("⊘"), skipColor.Sprint(counter+event.Message))
	case "unit_recorded":
		// reported together with unit_deployed
	default:
		infoColor.Fprintln(s.out, event.Message)
	}
}

// Info prints an info message
func (s *SpinnerSink) Info(message string) {
	s.around(func() { infoColor.Fprintln(s.out, message) })
}

// Error prints an error message
func (s *SpinnerSink) Error(message string) {
	s.around(func() { errColor.Fprintln(s.out, message) })
}

// Stop halts the spinner, if running.
func (s *SpinnerSink) Stop() {
	s.stop()
}

// around pauses a running spinner while print writes.
func (s *SpinnerSink) around(print func()) {
	wasActive := s.spinner != nil && s.spinner.Active()
	if wasActive {
		s.spinner.Stop()
	}
	print()
	if wasActive {
		s.spinner.Start()
	}
}

func (s *SpinnerSink) stop() {
	if s.spinner != nil && s.spinner.Active() {
		s.spinner.Stop()
	}
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
