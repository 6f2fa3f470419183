package seqio

import (
	"strings"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

const (
	primerBases = "ACGT"
	colorChars  = "0123."
)

// decodeColorspace splits the primer base off a colorspace read and checks the
// remaining color calls. A quality string one longer than the colors carries a
// primer quality, which is dropped.
func decodeColorspace(lr *lineReader, read *seq.Read) error {
	if read.Sequence == "" {
		return lr.errorf(ErrInvalid, "read %q: empty colorspace sequence", read.Name)
	}

	primer := read.Sequence[0]
	if !strings.ContainsRune(primerBases, rune(primer)) {
		return lr.errorf(ErrInvalid, "read %q: primer %q is not a base", read.Name, primer)
	}

	colors := read.Sequence[1:]
	if i := strings.IndexFunc(colors, func(r rune) bool { return !strings.ContainsRune(colorChars, r) }); i >= 0 {
		return lr.errorf(ErrInvalid, "read %q: %q is not a color call", read.Name, colors[i])
	}

	read.Primer = primer
	read.Sequence = colors

	if len(read.Qualities) == len(colors)+1 {
		read.Qualities = read.Qualities[1:]
	}

	return nil
}
