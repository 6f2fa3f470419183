package seqio_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seqio"
	"github.com/Sumatoshi-tech/seqpipe/pkg/stream"
)

func open(t *testing.T, name, content string) seqio.Reader {
	t.Helper()

	r, err := seqio.OpenReader(writeFile(t, name, content), seqio.Options{})
	require.NoError(t, err)

	return r
}

func TestMateName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "frag7", seqio.MateName("frag7/1"))
	assert.Equal(t, "frag7", seqio.MateName("frag7/2 extra"))
	assert.Equal(t, "frag7", seqio.MateName("frag7 1:N:0"))
	assert.Equal(t, "/1", seqio.MateName("/1"))
}

func TestPairedReader(t *testing.T) {
	t.Parallel()

	r1 := open(t, "r1.fq", "@f1/1\nAC\n+\nII\n@f2/1 x\nA\n+\nI\n")
	r2 := open(t, "r2.fq", "@f1/2\nGGG\n+\nIII\n@f2/2 y\nT\n+\nI\n")

	p := seqio.NewPairedReader(r1, r2)
	defer p.Close()

	assert.True(t, p.DeliversQualities())

	recs, err := stream.Collect[seq.Record](p)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].IsPaired())
	assert.Equal(t, "GGG", recs[0].Read2.Sequence)
	assert.Equal(t, "f2/2 y", recs[1].Read2.Name)
}

func TestPairedReader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		r1, r2 string
		want   error
	}{
		{name: "discordant", r1: "@a/1\nA\n+\nI\n", r2: "@b/2\nA\n+\nI\n", want: seqio.ErrDiscordant},
		{name: "mate_short", r1: "@a/1\nA\n+\nI\n@c/1\nA\n+\nI\n", r2: "@a/2\nA\n+\nI\n", want: seqio.ErrShort},
		{name: "first_short", r1: "", r2: "@a/2\nA\n+\nI\n", want: seqio.ErrShort},
		{name: "mate_invalid", r1: "@a/1\nA\n+\nI\n", r2: "@a/2\nA\n+\n\n", want: seqio.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := seqio.NewPairedReader(open(t, "1.fq", tt.r1), open(t, "2.fq", tt.r2))
			defer p.Close()

			_, err := stream.Collect[seq.Record](p)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInterleavedReader(t *testing.T) {
	t.Parallel()

	r := seqio.NewInterleavedReader(open(t, "il.fq", "@a/1\nA\n+\nI\n@a/2\nC\n+\nI\n@b/1\nG\n+\nI\n@b/2\nT\n+\nI\n"))
	defer r.Close()

	recs, err := stream.Collect[seq.Record](r)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "C", recs[0].Read2.Sequence)
	assert.Equal(t, "T", recs[1].Read2.Sequence)
}

func TestInterleavedReader_OddCount(t *testing.T) {
	t.Parallel()

	r := seqio.NewInterleavedReader(open(t, "il.fq", "@a/1\nA\n+\nI\n@a/2\nC\n+\nI\n@b/1\nG\n+\nI\n"))
	defer r.Close()

	recs, err := stream.Collect[seq.Record](r)
	require.ErrorIs(t, err, seqio.ErrShort)
	assert.Len(t, recs, 1)
}

func TestSelectRead(t *testing.T) {
	t.Parallel()

	for _, mate := range []int{1, 2} {
		paired := seqio.NewInterleavedReader(open(t, "il.fq", "@a/1\nA\n+\nI\n@a/2\nCC\n+\nII\n"))

		sel, err := seqio.SelectRead(paired, mate)
		require.NoError(t, err)

		recs, err := stream.Collect[seq.Record](sel)
		require.NoError(t, err)
		require.NoError(t, sel.Close())
		require.Len(t, recs, 1)
		assert.False(t, recs[0].IsPaired())
		assert.Equal(t, mate, recs[0].Read1.Len())
	}

	empty := open(t, "s.fq", "")
	defer empty.Close()

	_, err := seqio.SelectRead(empty, 3)
	require.ErrorIs(t, err, seqio.ErrInvalidMate)

	sel, err := seqio.SelectRead(open(t, "s.fq", "@a\nA\n+\nI\n"), 1)
	require.NoError(t, err)

	defer sel.Close()

	_, err = sel.Next()
	require.ErrorIs(t, err, seqio.ErrNotPaired)
}

func TestSplitPairs(t *testing.T) {
	t.Parallel()

	sam := "r1\t77\t*\t0\t0\t*\t*\t0\t0\tAC\tII\n" +
		"r1\t141\t*\t0\t0\t*\t*\t0\t0\tGGT\tIII\n" +
		"u\t4\t*\t0\t0\t*\t*\t0\t0\tA\tI\n"

	r := seqio.SplitPairs(open(t, "reads.sam", sam))
	defer r.Close()

	recs, err := stream.Collect[seq.Record](r)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	for _, rec := range recs {
		assert.False(t, rec.IsPaired())
	}

	assert.Equal(t, "AC", recs[0].Read1.Sequence)
	assert.Equal(t, "GGT", recs[1].Read1.Sequence)
	assert.Equal(t, "u", recs[2].Read1.Name)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}
