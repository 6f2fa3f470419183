package seqio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

const (
	phredOffset = 33
	phredMax    = 93
)

// fastaReader parses FASTA records whose sequence may span several lines.
// With a quality file, each record is matched by name against the
// corresponding .qual entry.
type fastaReader struct {
	doneState

	lines      *lineReader
	closer     io.Closer
	colorspace bool

	quals     *lineReader
	qualClose io.Closer
}

func newFASTAReader(lines *lineReader, closer io.Closer, opts Options) (*fastaReader, error) {
	r := &fastaReader{lines: lines, closer: closer, colorspace: opts.Colorspace}

	if opts.QualFile == "" {
		return r, nil
	}

	qrc, err := Open(opts.QualFile)
	if err != nil {
		return nil, err
	}

	r.quals = newLineReader(bufio.NewReaderSize(qrc, bufferSize(opts.BufferSize)), opts.QualFile)
	r.qualClose = qrc

	return r, nil
}

func (r *fastaReader) DeliversQualities() bool { return r.quals != nil }

func (r *fastaReader) Close() error {
	if r.qualClose == nil {
		return r.closer.Close()
	}

	return errors.Join(r.closer.Close(), r.qualClose.Close())
}

func (r *fastaReader) Next() (seq.Record, error) {
	if r.err != nil {
		return seq.Record{}, r.err
	}

	name, body, err := readFASTAEntry(r.lines, nil)
	if errors.Is(err, io.EOF) {
		if r.quals != nil {
			if _, _, qerr := readFASTAEntry(r.quals, nil); !errors.Is(qerr, io.EOF) {
				return r.fail(r.quals.errorf(ErrShort, "quality file has more records than sequences"))
			}
		}

		return r.fail(io.EOF)
	}

	if err != nil {
		return r.fail(err)
	}

	read := &seq.Read{Name: name, Sequence: string(body)}

	if r.quals != nil {
		read.Qualities, err = r.nextQualities(name)
		if err != nil {
			return r.fail(err)
		}
	}

	if r.colorspace {
		err = decodeColorspace(r.lines, read)
		if err != nil {
			return r.fail(err)
		}
	}

	if r.quals != nil && len(read.Qualities) != len(read.Sequence) {
		return r.fail(r.quals.errorf(ErrInvalid, "read %q: %d qualities for %d bases",
			name, len(read.Qualities), len(read.Sequence)))
	}

	return seq.Single(read), nil
}

func (r *fastaReader) nextQualities(name string) (string, error) {
	qname, values, err := readFASTAEntry(r.quals, []byte(" "))
	if errors.Is(err, io.EOF) {
		return "", r.quals.errorf(ErrShort, "no qualities for read %q", name)
	}

	if err != nil {
		return "", err
	}

	if qname != name {
		return "", r.quals.errorf(ErrDiscordant, "quality record %q does not match read %q", qname, name)
	}

	return phredFromNumbers(r.quals, values)
}

// readFASTAEntry reads one '>' header and the lines up to the next header,
// joined by sep.
func readFASTAEntry(lr *lineReader, sep []byte) (string, []byte, error) {
	var header []byte

	for {
		line, err := lr.next()
		if err != nil {
			return "", nil, err
		}

		if len(line) == 0 || line[0] == '#' {
			continue
		}

		header = line

		break
	}

	if header[0] != '>' {
		return "", nil, lr.errorf(ErrInvalid, "expected '>' at record start, got %q", header[0])
	}

	var body [][]byte

	for {
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", nil, err
		}

		if len(line) > 0 && line[0] == '>' {
			lr.unread(line)

			break
		}

		body = append(body, bytes.TrimSpace(line))
	}

	return string(header[1:]), bytes.Join(body, sep), nil
}

func phredFromNumbers(lr *lineReader, values []byte) (string, error) {
	fields := strings.Fields(string(values))

	var sb strings.Builder

	sb.Grow(len(fields))

	for _, field := range fields {
		q, err := strconv.Atoi(field)
		if err != nil {
			return "", lr.errorf(ErrInvalid, "quality %q is not a number", field)
		}

		sb.WriteByte(byte(min(max(q, 0), phredMax) + phredOffset))
	}

	return sb.String(), nil
}
