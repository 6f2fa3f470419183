package seqio

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strconv"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// SAM flag bits consulted by the reader.
const (
	samFlagPaired        = 0x1
	samFlagReverse       = 0x10
	samFlagFirst         = 0x40
	samFlagLast          = 0x80
	samFlagSecondary     = 0x100
	samFlagSupplementary = 0x800
)

const (
	samColName = 0
	samColFlag = 1
	samColSeq  = 9
	samColQual = 10

	samMissing = "*"
)

var complement = [256]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'N': 'N',
	'a': 't', 'c': 'g', 'g': 'c', 't': 'a', 'n': 'n',
}

// samReader reads primary alignments from unsorted or name-grouped SAM. Mates
// flagged 0x40/0x80 must be adjacent and are yielded as one record. Reverse
// strand alignments are restored to their sequencing orientation.
type samReader struct {
	doneState

	lines      *lineReader
	closer     io.Closer
	colorspace bool
}

type samEntry struct {
	read *seq.Read
	flag int
}

func (r *samReader) DeliversQualities() bool { return true }

func (r *samReader) Close() error { return r.closer.Close() }

func (r *samReader) Next() (seq.Record, error) {
	if r.err != nil {
		return seq.Record{}, r.err
	}

	first, err := r.nextPrimary()
	if err != nil {
		return r.fail(err)
	}

	if first.flag&samFlagPaired == 0 {
		return seq.Single(first.read), nil
	}

	if first.flag&samFlagFirst == 0 {
		return r.fail(r.lines.errorf(ErrInvalid, "read %q: mate 2 before mate 1", first.read.Name))
	}

	second, err := r.nextPrimary()
	if errors.Is(err, io.EOF) {
		return r.fail(r.lines.errorf(ErrShort, "read %q: missing mate 2", first.read.Name))
	}

	if err != nil {
		return r.fail(err)
	}

	if second.flag&samFlagLast == 0 || second.read.Name != first.read.Name {
		return r.fail(r.lines.errorf(ErrDiscordant, "read %q followed by %q", first.read.Name, second.read.Name))
	}

	return seq.Pair(first.read, second.read), nil
}

func (r *samReader) nextPrimary() (samEntry, error) {
	for {
		line, err := r.lines.next()
		if err != nil {
			return samEntry{}, err
		}

		if len(line) == 0 || line[0] == '@' {
			continue
		}

		entry, err := r.parse(line)
		if err != nil {
			return samEntry{}, err
		}

		if entry.flag&(samFlagSecondary|samFlagSupplementary) != 0 {
			continue
		}

		return entry, nil
	}
}

func (r *samReader) parse(line []byte) (samEntry, error) {
	cols := bytes.Split(line, []byte("\t"))
	if len(cols) < samMandatoryFields {
		return samEntry{}, r.lines.errorf(ErrInvalid, "%d columns, want at least %d", len(cols), samMandatoryFields)
	}

	flag, err := strconv.Atoi(string(cols[samColFlag]))
	if err != nil {
		return samEntry{}, r.lines.errorf(ErrInvalid, "flag %q is not a number", cols[samColFlag])
	}

	read := &seq.Read{Name: string(cols[samColName])}

	if s := string(cols[samColSeq]); s != samMissing {
		read.Sequence = s
	}

	if q := string(cols[samColQual]); q != samMissing {
		read.Qualities = q
	}

	if read.Qualities != "" && len(read.Qualities) != len(read.Sequence) {
		return samEntry{}, r.lines.errorf(ErrInvalid, "read %q: %d qualities for %d bases",
			read.Name, len(read.Qualities), len(read.Sequence))
	}

	if flag&samFlagReverse != 0 {
		read.Sequence = reverseComplement(read.Sequence)
		read.Qualities = reverse(read.Qualities)
	}

	if r.colorspace {
		err = decodeColorspace(r.lines, read)
		if err != nil {
			return samEntry{}, err
		}
	}

	return samEntry{read: read, flag: flag}, nil
}

func reverseComplement(s string) string {
	out := []byte(s)
	slices.Reverse(out)

	for i, b := range out {
		if c := complement[b]; c != 0 {
			out[i] = c
		}
	}

	return string(out)
}

func reverse(s string) string {
	out := []byte(s)
	slices.Reverse(out)

	return string(out)
}
