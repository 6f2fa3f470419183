package seqio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// ErrInvalidMate is returned by SelectRead for a mate number other than 1 or 2.
var ErrInvalidMate = errors.New("mate must be 1 or 2")

// MateName reduces a read name to the part shared by both mates: the first
// whitespace-delimited token without a trailing /1 or /2.
func MateName(name string) string {
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}

	if n := len(name); n > 2 && name[n-2] == '/' && (name[n-1] == '1' || name[n-1] == '2') {
		name = name[:n-2]
	}

	return name
}

func checkMates(r1, r2 *seq.Read) error {
	if MateName(r1.Name) != MateName(r2.Name) {
		return fmt.Errorf("%w: %q and %q", ErrDiscordant, r1.Name, r2.Name)
	}

	return nil
}

// pairedReader zips two single-end readers into mate pairs.
type pairedReader struct {
	doneState

	r1, r2 Reader
}

// NewPairedReader pairs the records of r1 and r2 in order. Closing the result
// closes both readers.
func NewPairedReader(r1, r2 Reader) Reader {
	return &pairedReader{r1: r1, r2: r2}
}

func (p *pairedReader) DeliversQualities() bool {
	return p.r1.DeliversQualities() && p.r2.DeliversQualities()
}

func (p *pairedReader) Close() error {
	return errors.Join(p.r1.Close(), p.r2.Close())
}

func (p *pairedReader) Next() (seq.Record, error) {
	if p.err != nil {
		return seq.Record{}, p.err
	}

	rec1, err1 := p.r1.Next()
	rec2, err2 := p.r2.Next()

	eof1, eof2 := errors.Is(err1, io.EOF), errors.Is(err2, io.EOF)

	switch {
	case eof1 && eof2:
		return p.fail(io.EOF)
	case err1 != nil && !eof1:
		return p.fail(err1)
	case err2 != nil && !eof2:
		return p.fail(err2)
	case eof1 || eof2:
		return p.fail(fmt.Errorf("%w: one mate file ended before the other", ErrShort))
	}

	err := checkMates(rec1.Read1, rec2.Read1)
	if err != nil {
		return p.fail(err)
	}

	return seq.Pair(rec1.Read1, rec2.Read1), nil
}

// interleavedReader groups consecutive records of one reader into pairs.
type interleavedReader struct {
	doneState

	Reader
}

// NewInterleavedReader reads mates stored alternately in a single file.
func NewInterleavedReader(r Reader) Reader {
	return &interleavedReader{Reader: r}
}

func (ir *interleavedReader) Next() (seq.Record, error) {
	if ir.err != nil {
		return seq.Record{}, ir.err
	}

	rec1, err := ir.Reader.Next()
	if err != nil {
		return ir.fail(err)
	}

	rec2, err := ir.Reader.Next()
	if errors.Is(err, io.EOF) {
		return ir.fail(fmt.Errorf("%w: read %q has no mate", ErrShort, rec1.Read1.Name))
	}

	if err != nil {
		return ir.fail(err)
	}

	err = checkMates(rec1.Read1, rec2.Read1)
	if err != nil {
		return ir.fail(err)
	}

	return seq.Pair(rec1.Read1, rec2.Read1), nil
}

// selectReader keeps one mate of every pair.
type selectReader struct {
	doneState

	Reader

	mate int
}

// SelectRead turns paired input into single-end records holding only the
// given mate (1 or 2).
func SelectRead(r Reader, mate int) (Reader, error) {
	if mate != 1 && mate != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMate, mate)
	}

	return &selectReader{Reader: r, mate: mate}, nil
}

func (sr *selectReader) Next() (seq.Record, error) {
	if sr.err != nil {
		return seq.Record{}, sr.err
	}

	rec, err := sr.Reader.Next()
	if err != nil {
		return sr.fail(err)
	}

	if !rec.IsPaired() {
		return sr.fail(fmt.Errorf("%w: read %q", ErrNotPaired, rec.Read1.Name))
	}

	if sr.mate == 1 {
		return seq.Single(rec.Read1), nil
	}

	return seq.Single(rec.Read2), nil
}

// splitReader yields every read of r as its own single-end record.
type splitReader struct {
	Reader

	pending *seq.Read
}

// SplitPairs flattens mate pairs into consecutive single-end records, mate 1
// first. Single-end records pass through.
func SplitPairs(r Reader) Reader {
	return &splitReader{Reader: r}
}

func (sr *splitReader) Next() (seq.Record, error) {
	if sr.pending != nil {
		read := sr.pending
		sr.pending = nil

		return seq.Single(read), nil
	}

	rec, err := sr.Reader.Next()
	if err != nil {
		return seq.Record{}, err
	}

	sr.pending = rec.Read2

	return seq.Single(rec.Read1), nil
}
