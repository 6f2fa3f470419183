package pipeline

import (
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

// BasePairs holds cumulative base-pair totals for read 1 and read 2.
// The second element stays zero for single-end data.
type BasePairs [2]int64

// BatchContext is the transient per-batch state handed to the strategy and
// handler. BP points at the pipeline's live accumulator for Source, so
// additions are reflected in the statistics immediately. A BatchContext must
// not be retained after HandleReads returns.
type BatchContext struct {
	Source seq.SourceID
	Size   int
	BP     *BasePairs
}

// Stats is the running per-source accounting owned by a Pipeline.
type Stats struct {
	RecordCounts map[seq.SourceID]int64
	BPCounts     map[seq.SourceID]*BasePairs
}

func newStats() Stats {
	return Stats{
		RecordCounts: make(map[seq.SourceID]int64),
		BPCounts:     make(map[seq.SourceID]*BasePairs),
	}
}

// Summary is an immutable snapshot of Stats.
type Summary struct {
	RecordCounts map[seq.SourceID]int64     `json:"record_counts" yaml:"record_counts"`
	BPCounts     map[seq.SourceID]BasePairs `json:"bp_counts"     yaml:"bp_counts"`
}

// snapshot copies s; the result shares no memory with the live maps.
func (s Stats) snapshot() Summary {
	bp := make(map[seq.SourceID]BasePairs, len(s.BPCounts))
	for src, counts := range s.BPCounts {
		bp[src] = *counts
	}

	return Summary{
		RecordCounts: maps.Clone(s.RecordCounts),
		BPCounts:     bp,
	}
}

// Sources returns the source identifiers present in the summary, sorted.
func (s Summary) Sources() []seq.SourceID {
	out := make([]seq.SourceID, 0, len(s.RecordCounts))
	for src := range s.RecordCounts {
		out = append(out, src)
	}

	slices.Sort(out)

	return out
}

// TotalRecords sums record counts over every source.
func (s Summary) TotalRecords() int64 {
	var total int64
	for _, n := range s.RecordCounts {
		total += n
	}

	return total
}
