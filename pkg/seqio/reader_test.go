package seqio_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seqio"
	"github.com/Sumatoshi-tech/seqpipe/pkg/stream"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func readAll(t *testing.T, path string, opts seqio.Options) ([]seq.Record, error) {
	t.Helper()

	r, err := seqio.OpenReader(path, opts)
	require.NoError(t, err)

	defer func() { require.NoError(t, r.Close()) }()

	return stream.Collect[seq.Record](r)
}

func TestFASTQ_Parses(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "r.fastq", "@r1 desc\nACGT\n+\nIIII\n\r\n@r2\r\nGG\r\n+r2\r\n#!")

	recs, err := readAll(t, path, seqio.Options{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, &seq.Read{Name: "r1 desc", Sequence: "ACGT", Qualities: "IIII"}, recs[0].Read1)
	assert.Equal(t, &seq.Read{Name: "r2", Sequence: "GG", Qualities: "#!"}, recs[1].Read1)
	assert.False(t, recs[0].IsPaired())
}

func TestFASTQ_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "bad_header", content: ">r1\nACGT\n", want: seqio.ErrInvalid},
		{name: "bad_separator", content: "@r1\nACGT\n-\nIIII\n", want: seqio.ErrInvalid},
		{name: "foreign_separator_name", content: "@r1\nACGT\n+r9\nIIII\n", want: seqio.ErrInvalid},
		{name: "quality_length", content: "@r1\nACGT\n+\nIII\n", want: seqio.ErrInvalid},
		{name: "truncated", content: "@r1\nACGT\n+\n", want: seqio.ErrShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := seqio.OpenReader(writeFile(t, "x.fq", tt.content), seqio.Options{})
			require.NoError(t, err)

			defer r.Close()

			_, err = r.Next()
			require.ErrorIs(t, err, tt.want)

			_, again := r.Next()
			assert.Equal(t, err, again, "errors are sticky")
		})
	}
}

func TestFASTQ_Colorspace(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "cs.fq", "@c1\nT0123.\n+\n!IIIII\n@c2\nG10\n+\nII\n")

	recs, err := readAll(t, path, seqio.Options{Colorspace: true})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, &seq.Read{Name: "c1", Sequence: "0123.", Qualities: "IIIII", Primer: 'T'}, recs[0].Read1)
	assert.Equal(t, &seq.Read{Name: "c2", Sequence: "10", Qualities: "II", Primer: 'G'}, recs[1].Read1)
}

func TestFASTQ_ColorspaceRejectsBases(t *testing.T) {
	t.Parallel()

	_, err := readAll(t, writeFile(t, "cs.fq", "@c1\nTACG\n+\nIIII\n"), seqio.Options{Colorspace: true})
	require.ErrorIs(t, err, seqio.ErrInvalid)
}

func TestFASTA_MultiLine(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "r.fa", "# comment\n>s1 first\nACGT\nAC\n\n>s2\nTT\n")

	r, err := seqio.OpenReader(path, seqio.Options{})
	require.NoError(t, err)

	defer r.Close()

	assert.False(t, r.DeliversQualities())

	recs, err := stream.Collect[seq.Record](r)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "ACGTAC", recs[0].Read1.Sequence)
	assert.Equal(t, "s1 first", recs[0].Read1.Name)
	assert.Equal(t, "TT", recs[1].Read1.Sequence)
	assert.False(t, recs[1].Read1.HasQualities())
}

func TestFASTA_WithQualFile(t *testing.T) {
	t.Parallel()

	fasta := writeFile(t, "r.fasta", ">s1\nACG\nT\n>s2\nGG\n")
	qual := writeFile(t, "r.qual", ">s1\n40 30\n20 -3\n>s2\n99 0\n")

	r, err := seqio.OpenReader(fasta, seqio.Options{QualFile: qual})
	require.NoError(t, err)

	defer r.Close()

	assert.True(t, r.DeliversQualities())

	recs, err := stream.Collect[seq.Record](r)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "I?5!", recs[0].Read1.Qualities)
	assert.Equal(t, "~!", recs[1].Read1.Qualities)
}

func TestFASTA_QualFileMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		qual string
		want error
	}{
		{name: "name", qual: ">other\n40\n", want: seqio.ErrDiscordant},
		{name: "missing", qual: "", want: seqio.ErrShort},
		{name: "extra", qual: ">s1\n40\n>s2\n40\n", want: seqio.ErrShort},
		{name: "length", qual: ">s1\n40 40\n", want: seqio.ErrInvalid},
		{name: "not_a_number", qual: ">s1\nhigh\n", want: seqio.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fasta := writeFile(t, "r.fasta", ">s1\nA\n")
			qual := writeFile(t, "r.qual", tt.qual)

			_, err := readAll(t, fasta, seqio.Options{QualFile: qual})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSAM_PairsAndOrientation(t *testing.T) {
	t.Parallel()

	content := "@HD\tVN:1.6\n" +
		"q1\t77\t*\t0\t0\t*\t*\t0\t0\tACGG\tABCD\n" +
		"q1\t157\t*\t0\t0\t*\t*\t0\t0\tTTGA\tEFGH\n" +
		"q1\t333\t*\t0\t0\t*\t*\t0\t0\tAAAA\tIIII\n" +
		"q2\t4\t*\t0\t0\t*\t*\t0\t0\tCC\t*\n"

	recs, err := readAll(t, writeFile(t, "a.sam", content), seqio.Options{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.True(t, recs[0].IsPaired())
	assert.Equal(t, &seq.Read{Name: "q1", Sequence: "ACGG", Qualities: "ABCD"}, recs[0].Read1)
	assert.Equal(t, &seq.Read{Name: "q1", Sequence: "TCAA", Qualities: "HGFE"}, recs[0].Read2)

	assert.False(t, recs[1].IsPaired())
	assert.Equal(t, &seq.Read{Name: "q2", Sequence: "CC"}, recs[1].Read1)
}

func TestSAM_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "columns", content: "q1\t4\t*\n", want: seqio.ErrInvalid},
		{name: "flag", content: "q1\tx\t*\t0\t0\t*\t*\t0\t0\tA\tI\n", want: seqio.ErrInvalid},
		{name: "missing_mate", content: "q1\t77\t*\t0\t0\t*\t*\t0\t0\tA\tI\n", want: seqio.ErrShort},
		{
			name: "discordant",
			content: "q1\t77\t*\t0\t0\t*\t*\t0\t0\tA\tI\n" +
				"q9\t141\t*\t0\t0\t*\t*\t0\t0\tA\tI\n",
			want: seqio.ErrDiscordant,
		},
		{name: "mate2_first", content: "q1\t141\t*\t0\t0\t*\t*\t0\t0\tA\tI\n", want: seqio.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := readAll(t, writeFile(t, "x.sam", tt.content), seqio.Options{})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFormatDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		hint    seqio.Format
		want    string
	}{
		{name: "sniff_fastq", file: "reads.txt", content: "@r\nA\n+\nI\n", want: "A"},
		{name: "sniff_fasta", file: "reads.dat", content: "\n>r\nC\n", want: "C"},
		{name: "sniff_sam", file: "reads", content: "@SQ\tSN:x\nr\t4\t*\t0\t0\t*\t*\t0\t0\tG\tI\n", want: "G"},
		{name: "sniff_headerless_sam", file: "reads", content: "r\t4\t*\t0\t0\t*\t*\t0\t0\tT\tI\n", want: "T"},
		{name: "hint_wins", file: "reads.fastq", content: ">r\nAA\n", hint: seqio.FormatFASTA, want: "AA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recs, err := readAll(t, writeFile(t, tt.file, tt.content), seqio.Options{Format: tt.hint})
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.want, recs[0].Read1.Sequence)
		})
	}
}

func TestFormatDetection_Unknown(t *testing.T) {
	t.Parallel()

	_, err := seqio.OpenReader(writeFile(t, "notes.txt", "hello world\n"), seqio.Options{})
	require.ErrorIs(t, err, seqio.ErrUnknownFileType)

	_, err = seqio.OpenReader(writeFile(t, "empty", ""), seqio.Options{})
	require.ErrorIs(t, err, seqio.ErrUnknownFileType)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]seqio.Format{"": seqio.FormatAuto, "auto": seqio.FormatAuto, "FASTQ": seqio.FormatFASTQ, "sam": seqio.FormatSAM} {
		got, err := seqio.ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := seqio.ParseFormat("bam")
	require.ErrorIs(t, err, seqio.ErrUnknownFileType)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, seqio.FormatFASTQ, seqio.FormatFromPath("a/b/s1.fq.gz"))
	assert.Equal(t, seqio.FormatFASTA, seqio.FormatFromPath("S1.CSFASTA"))
	assert.Equal(t, seqio.FormatSAM, seqio.FormatFromPath("x.sam.zst"))
	assert.Equal(t, seqio.FormatAuto, seqio.FormatFromPath("x.bam"))
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := seqio.OpenReader(filepath.Join(t.TempDir(), "none.fq"), seqio.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReader_EOFIsSticky(t *testing.T) {
	t.Parallel()

	r, err := seqio.OpenReader(writeFile(t, "r.fq", "@r\nA\n+\nI\n"), seqio.Options{})
	require.NoError(t, err)

	defer r.Close()

	_, err = r.Next()
	require.NoError(t, err)

	for range 3 {
		_, err = r.Next()
		require.ErrorIs(t, err, io.EOF)
	}
}

func TestOpenReader_QualFileNeedsFASTA(t *testing.T) {
	t.Parallel()

	fastq := writeFile(t, "r.fq", "@r\nA\n+\nI\n")
	qual := writeFile(t, "r.qual", ">r\n40\n")

	_, err := seqio.OpenReader(fastq, seqio.Options{QualFile: qual})
	require.ErrorIs(t, err, seqio.ErrQualFileFormat)
}
