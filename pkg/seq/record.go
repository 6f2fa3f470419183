// Package seq defines sequence records, record batches and the batch iterator
// that groups a record stream into fixed-size batches tagged with their source.
package seq

import "strings"

// Read is a single sequencing read.
type Read struct {
	// Name is the read identifier without the leading '@' or '>'.
	Name string

	// Sequence holds the bases (or colors, for colorspace reads).
	Sequence string

	// Qualities holds Phred+33 encoded scores. Empty when the input has none.
	Qualities string

	// Primer is the leading primer base of a colorspace read, or zero.
	Primer byte
}

// Len returns the number of bases in the read.
func (r *Read) Len() int {
	return len(r.Sequence)
}

// HasQualities reports whether the read carries quality scores.
func (r *Read) HasQualities() bool {
	return r.Qualities != ""
}

// Record is one element of a read stream: a single read, or a mate pair when
// Read2 is set.
type Record struct {
	Read1 *Read
	Read2 *Read
}

// Single returns a single-end record.
func Single(read *Read) Record {
	return Record{Read1: read}
}

// Pair returns a paired-end record.
func Pair(read1, read2 *Read) Record {
	return Record{Read1: read1, Read2: read2}
}

// IsPaired reports whether the record holds a mate pair.
func (r Record) IsPaired() bool {
	return r.Read2 != nil
}

// SourceID identifies the input a batch was read from and keys all statistics.
type SourceID string

// pairSeparator joins the two paths of a paired source identifier.
const pairSeparator = ","

// Provenance records the input path(s) a stream was opened from.
type Provenance struct {
	Input1 string
	Input2 string
}

// SourceID returns input1, or "input1,input2" for two-file input.
func (p Provenance) SourceID() SourceID {
	if p.Input2 == "" {
		return SourceID(p.Input1)
	}

	return SourceID(strings.Join([]string{p.Input1, p.Input2}, pairSeparator))
}

// Batch is a bounded group of consecutive records from one source.
// Size is the declared record count and must equal len(Records).
type Batch struct {
	Source  SourceID
	Size    int
	Records []Record
}
