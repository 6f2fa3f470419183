package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

const (
	renderInterval = 100 * time.Millisecond
	stopPoll       = 5 * time.Millisecond
	trackerLength  = 30
)

// Terminal draws a live go-pretty tracker. Rendering happens on its own
// goroutine, which only reads the tracker's counters.
type Terminal struct {
	pw      progress.Writer
	tracker *progress.Tracker
}

// NewTerminal starts rendering immediately.
func NewTerminal(cfg Config) *Terminal {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(trackerLength)
	pw.SetUpdateFrequency(renderInterval)
	pw.SetStyle(progress.StyleBlocks)
	pw.Style().Visibility.ETA = cfg.MaxReads > 0
	pw.Style().Visibility.Percentage = cfg.MaxReads > 0

	mag := cfg.Magnitude
	tracker := &progress.Tracker{
		Message: fmt.Sprintf("reads (batch %d)", cfg.BatchSize),
		Total:   int64(cfg.MaxReads),
		Units: progress.Units{
			Formatter: mag.Format,
		},
	}

	pw.AppendTracker(tracker)

	go pw.Render()

	// Stop is a no-op until Render is running.
	for !pw.IsRenderInProgress() {
		time.Sleep(stopPoll)
	}

	return &Terminal{pw: pw, tracker: tracker}
}

// Add advances the tracker.
func (t *Terminal) Add(records int) {
	t.tracker.Increment(int64(records))
}

// Done marks the tracker complete and waits for the final frame.
func (t *Terminal) Done() {
	t.tracker.MarkAsDone()
	t.pw.Stop()

	for t.pw.IsRenderInProgress() {
		time.Sleep(stopPoll)
	}
}

// Messages prints one line per batch, with a bar when the total is known.
type Messages struct {
	out   io.Writer
	cfg   Config
	count int64
}

// NewMessages writes to cfg.Out, or stderr when unset.
func NewMessages(cfg Config) *Messages {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	return &Messages{out: out, cfg: cfg}
}

const (
	barFilled = "█"
	barEmpty  = "░"
	barWidth  = 20
)

func drawBar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction * float64(width))

	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}

// Add prints the running total.
func (m *Messages) Add(records int) {
	m.count += int64(records)
	m.print("")
}

// Done prints the final total.
func (m *Messages) Done() {
	m.print(" done")
}

func (m *Messages) print(suffix string) {
	line := m.cfg.Magnitude.Format(m.count) + " reads"

	if m.cfg.MaxReads > 0 {
		total := float64(m.cfg.MaxReads)
		line = fmt.Sprintf("%s %s/%s", drawBar(float64(m.count)/total, barWidth),
			m.cfg.Magnitude.Format(m.count), m.cfg.Magnitude.Format(int64(m.cfg.MaxReads))) + " reads"
	}

	_, _ = fmt.Fprintln(m.out, line+suffix)
}
