// Package progress reports how many records a pipeline run has pulled.
//
// Reporters observe batches as they pass through the batch stream; they never
// alter, reorder or drop a batch.
package progress

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
	"github.com/Sumatoshi-tech/seqpipe/pkg/stream"
)

// Reporter receives record counts as batches are pulled.
type Reporter interface {
	// Add is called once per batch with its record count.
	Add(records int)
	// Done is called once, when the stream ends, fails or is stopped.
	Done()
}

// Wrap returns batches unchanged, reporting each batch's size to r.
func Wrap(batches stream.Iterator[seq.Batch], r Reporter) *Observer {
	return &Observer{upstream: batches, reporter: r}
}

// Observer is the batch stream returned by Wrap.
type Observer struct {
	upstream stream.Iterator[seq.Batch]
	reporter Reporter
	done     bool
}

func (o *Observer) Next() (seq.Batch, error) {
	batch, err := o.upstream.Next()
	if err != nil {
		o.Stop()

		return batch, err
	}

	o.reporter.Add(batch.Size)

	return batch, nil
}

// Stop calls the reporter's Done unless the stream already ended. Consumers
// that abandon the stream early must call it.
func (o *Observer) Stop() {
	if o.done {
		return
	}

	o.done = true
	o.reporter.Done()
}

// Magnitude scales record counts for display.
type Magnitude string

// Display magnitudes.
const (
	Kilo Magnitude = "K"
	Mega Magnitude = "M"
	Giga Magnitude = "G"
)

// ErrInvalidMagnitude is returned for a magnitude other than K, M or G.
var ErrInvalidMagnitude = errors.New("invalid counter magnitude")

// ParseMagnitude accepts K, M or G in either case. Empty means M.
func ParseMagnitude(s string) (Magnitude, error) {
	switch m := Magnitude(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return Mega, nil
	case Kilo, Mega, Giga:
		return m, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidMagnitude, s)
}

func (m Magnitude) divisor() float64 {
	switch m {
	case Kilo:
		return 1e3
	case Giga:
		return 1e9
	case Mega:
	}

	return 1e6
}

// Format renders n in units of m, e.g. "1.2M".
func (m Magnitude) Format(n int64) string {
	return humanize.FormatFloat("#,###.#", float64(n)/m.divisor()) + string(m)
}

// Config describes how a run's progress is displayed.
type Config struct {
	// Style is "bar" for a live tracker or "msg" for one line per batch.
	Style     string
	Out       io.Writer
	BatchSize int
	// MaxReads is the expected total; zero means unknown.
	MaxReads  int
	Magnitude Magnitude
}

// ErrInvalidStyle is returned by New for an unknown style.
var ErrInvalidStyle = errors.New("invalid progress style")

// Styles accepted by New.
const (
	StyleBar = "bar"
	StyleMsg = "msg"
)

// New builds the reporter selected by cfg.Style.
func New(cfg Config) (Reporter, error) {
	if cfg.Magnitude == "" {
		cfg.Magnitude = Mega
	}

	switch strings.ToLower(cfg.Style) {
	case StyleBar:
		return NewTerminal(cfg), nil
	case StyleMsg:
		return NewMessages(cfg), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidStyle, cfg.Style)
}
