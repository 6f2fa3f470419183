package seqio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seqio"
)

func TestCompressionRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file  string
		magic []byte
	}{
		{file: "r.fastq"},
		{file: "r.fq.gz", magic: []byte{0x1f, 0x8b}},
		{file: "r.fq.zst", magic: []byte{0x28, 0xb5, 0x2f, 0xfd}},
		{file: "r.fq.lz4", magic: []byte{0x04, 0x22, 0x4d, 0x18}},
	}

	reads := []*seq.Read{
		{Name: "a", Sequence: "ACGT", Qualities: "IIII"},
		{Name: "b", Sequence: "GG", Qualities: "!!"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)

			out, err := seqio.Create(path)
			require.NoError(t, err)

			w := seqio.NewWriter(out, seqio.OutputFormat(path, true))
			for _, r := range reads {
				require.NoError(t, w.Write(r))
			}

			require.NoError(t, w.Flush())
			require.NoError(t, out.Close())
			assert.Equal(t, int64(2), w.Count())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)

			if tt.magic != nil {
				assert.True(t, bytes.HasPrefix(raw, tt.magic), "written with %s", seqio.CompressionFromPath(path))
			}

			recs, err := readAll(t, path, seqio.Options{})
			require.NoError(t, err)
			require.Len(t, recs, 2)
			assert.Equal(t, reads[0], recs[0].Read1)
			assert.Equal(t, reads[1], recs[1].Read1)
		})
	}
}

func TestOpen_SniffsCompressionWithoutSuffix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	gzPath := filepath.Join(dir, "r.fq.gz")

	out, err := seqio.Create(gzPath)
	require.NoError(t, err)

	w := seqio.NewWriter(out, seqio.FormatFASTQ)
	require.NoError(t, w.Write(&seq.Read{Name: "a", Sequence: "A", Qualities: "I"}))
	require.NoError(t, w.Flush())
	require.NoError(t, out.Close())

	renamed := filepath.Join(dir, "reads.fq")
	require.NoError(t, os.Rename(gzPath, renamed))

	recs, err := readAll(t, renamed, seqio.Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Read1.Name)
}

func TestCreate_RejectsBzip2(t *testing.T) {
	t.Parallel()

	_, err := seqio.Create(filepath.Join(t.TempDir(), "x.fq.bz2"))
	require.ErrorIs(t, err, seqio.ErrBzip2Write)
}

func TestCompressionFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, seqio.Gzip, seqio.CompressionFromPath("a.FQ.GZ"))
	assert.Equal(t, seqio.Zstd, seqio.CompressionFromPath("a.fq.zst"))
	assert.Equal(t, seqio.LZ4, seqio.CompressionFromPath("a.fq.lz4"))
	assert.Equal(t, seqio.Bzip2, seqio.CompressionFromPath("a.fq.bz2"))
	assert.Equal(t, seqio.NoCompression, seqio.CompressionFromPath("a.fq"))
	assert.Equal(t, "dir/a.fq", seqio.StripCompressionSuffix("dir/a.fq.gz"))
}

func TestWriter_Formats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w := seqio.NewWriter(&buf, seqio.FormatFASTA)
	require.NoError(t, w.Write(&seq.Read{Name: "a", Sequence: "ACGT", Qualities: "IIII"}))
	require.NoError(t, w.Write(&seq.Read{Name: "cs", Sequence: "012", Primer: 'T'}))
	require.NoError(t, w.Flush())

	assert.Equal(t, ">a\nACGT\n>cs\nT012\n", buf.String())
	assert.Equal(t, seqio.FormatFASTA, w.Format())

	fq := seqio.NewWriter(&bytes.Buffer{}, seqio.FormatSAM)
	assert.Equal(t, seqio.FormatFASTQ, fq.Format())
	require.ErrorIs(t, fq.Write(&seq.Read{Name: "n", Sequence: "A"}), seqio.ErrNoQualities)
	assert.Zero(t, fq.Count())
}

func TestOutputFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, seqio.FormatFASTA, seqio.OutputFormat("out.fa.gz", true))
	assert.Equal(t, seqio.FormatFASTQ, seqio.OutputFormat("out.fastq", false))
	assert.Equal(t, seqio.FormatFASTQ, seqio.OutputFormat("-", true))
	assert.Equal(t, seqio.FormatFASTA, seqio.OutputFormat("-", false))
}
