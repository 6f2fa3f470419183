package seqio

import (
	"errors"
	"io"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// fastqReader parses four-line FASTQ records.
type fastqReader struct {
	doneState

	lines      *lineReader
	closer     io.Closer
	colorspace bool
}

func (r *fastqReader) DeliversQualities() bool { return true }

func (r *fastqReader) Close() error { return r.closer.Close() }

func (r *fastqReader) Next() (seq.Record, error) {
	if r.err != nil {
		return seq.Record{}, r.err
	}

	read, err := r.readOne()
	if err != nil {
		return r.fail(err)
	}

	return seq.Single(read), nil
}

func (r *fastqReader) readOne() (*seq.Read, error) {
	header, err := r.skipBlank()
	if err != nil {
		return nil, err
	}

	if header[0] != '@' {
		return nil, r.lines.errorf(ErrInvalid, "expected '@' at record start, got %q", header[0])
	}

	name := string(header[1:])

	sequence, err := r.mustLine()
	if err != nil {
		return nil, err
	}

	plus, err := r.mustLine()
	if err != nil {
		return nil, err
	}

	if len(plus) == 0 || plus[0] != '+' {
		return nil, r.lines.errorf(ErrInvalid, "read %q: expected '+' separator", name)
	}

	if repeated := string(plus[1:]); repeated != "" && repeated != name {
		return nil, r.lines.errorf(ErrInvalid, "read %q: separator names %q", name, repeated)
	}

	quals, err := r.mustLine()
	if err != nil {
		return nil, err
	}

	read := &seq.Read{Name: name, Sequence: string(sequence), Qualities: string(quals)}

	if r.colorspace {
		err = decodeColorspace(r.lines, read)
		if err != nil {
			return nil, err
		}
	}

	if len(read.Qualities) != len(read.Sequence) {
		return nil, r.lines.errorf(ErrInvalid, "read %q: %d qualities for %d bases",
			name, len(read.Qualities), len(read.Sequence))
	}

	return read, nil
}

// skipBlank returns the next non-empty line, or io.EOF at a record boundary.
func (r *fastqReader) skipBlank() ([]byte, error) {
	for {
		line, err := r.lines.next()
		if err != nil {
			return nil, err
		}

		if len(line) > 0 {
			return line, nil
		}
	}
}

// mustLine reads a line inside a record, where end of input is ErrShort.
func (r *fastqReader) mustLine() ([]byte, error) {
	line, err := r.lines.next()
	if errors.Is(err, io.EOF) {
		return nil, r.lines.errorf(ErrShort, "input ends inside a record")
	}

	return line, err
}
