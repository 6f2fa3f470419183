// Package seqio reads and writes sequencing records in FASTA, FASTQ and SAM
// form, with optional compression, colorspace decoding and mate pairing.
package seqio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
	"github.com/Sumatoshi-tech/seqpipe/pkg/stream"
)

var (
	// ErrInvalid is returned for malformed record syntax.
	ErrInvalid = errors.New("invalid sequence file")
	// ErrShort is returned when input ends inside a record, or one mate
	// stream ends before the other.
	ErrShort = errors.New("truncated sequence file")
	// ErrDiscordant is returned when mates carry different read names.
	ErrDiscordant = errors.New("discordant mate names")
	// ErrNotPaired is returned by SelectRead on single-end input.
	ErrNotPaired = errors.New("input is not paired")
	// ErrQualFileFormat is returned when a quality file accompanies input
	// that is not FASTA.
	ErrQualFileFormat = errors.New("quality file requires FASTA input")
)

// DefaultBufferSize is the read buffer used when none is configured.
const DefaultBufferSize = 1 << 20

// Reader yields records from one or two underlying files.
type Reader interface {
	stream.Iterator[seq.Record]
	io.Closer

	// DeliversQualities reports whether reads carry quality strings.
	DeliversQualities() bool
}

// Options control how OpenReader interprets its input.
type Options struct {
	Format     Format
	Colorspace bool
	// QualFile is a separate .qual file paired with a FASTA input.
	QualFile   string
	BufferSize int
}

// OpenReader opens path and returns a record reader for it.
func OpenReader(path string, opts Options) (Reader, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(rc, bufferSize(opts.BufferSize))

	format, err := resolveFormat(opts.Format, path, br)
	if err != nil {
		return nil, errors.Join(err, rc.Close())
	}

	if opts.QualFile != "" && format != FormatFASTA {
		return nil, errors.Join(fmt.Errorf("%w: %s is %s", ErrQualFileFormat, path, format), rc.Close())
	}

	lines := newLineReader(br, path)

	var r Reader

	switch format {
	case FormatFASTQ:
		r = &fastqReader{lines: lines, closer: rc, colorspace: opts.Colorspace}
	case FormatFASTA:
		r, err = newFASTAReader(lines, rc, opts)
	case FormatSAM:
		r = &samReader{lines: lines, closer: rc, colorspace: opts.Colorspace}
	case FormatAuto:
		err = fmt.Errorf("%w: %s", ErrUnknownFileType, path)
	}

	if err != nil {
		return nil, errors.Join(err, rc.Close())
	}

	return r, nil
}

func bufferSize(n int) int {
	if n <= 0 {
		return DefaultBufferSize
	}

	return n
}

// lineReader yields lines without their terminator and supports one line of
// push-back for formats whose records end at the next header.
type lineReader struct {
	br      *bufio.Reader
	name    string
	line    int
	pending []byte
	hasPend bool
}

func newLineReader(br *bufio.Reader, name string) *lineReader {
	return &lineReader{br: br, name: name}
}

// next returns the next line, or io.EOF after the final one. A trailing line
// without a newline is returned normally.
func (lr *lineReader) next() ([]byte, error) {
	if lr.hasPend {
		lr.hasPend = false

		return lr.pending, nil
	}

	raw, err := lr.br.ReadBytes('\n')
	if len(raw) == 0 && err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("%s: %w", lr.name, err)
	}

	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", lr.name, err)
	}

	lr.line++

	return bytes.TrimRight(raw, "\r\n"), nil
}

func (lr *lineReader) unread(line []byte) {
	lr.pending = line
	lr.hasPend = true
}

// errorf attributes err to the current line of the input.
func (lr *lineReader) errorf(err error, format string, args ...any) error {
	return fmt.Errorf("%s:%d: %w: %s", lr.name, lr.line, err, fmt.Sprintf(format, args...))
}

// doneState makes io.EOF and errors sticky for record readers.
type doneState struct {
	err error
}

func (d *doneState) fail(err error) (seq.Record, error) {
	d.err = err

	return seq.Record{}, err
}
