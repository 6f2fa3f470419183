package report_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/seqpipe/pkg/pipeline"
	"github.com/Sumatoshi-tech/seqpipe/pkg/report"
	"github.com/Sumatoshi-tech/seqpipe/pkg/seq"
)

func init() {
	color.NoColor = true
}

func sampleDoc() report.Document {
	return report.Document{
		Command: "stats",
		RunID:   "0b6f",
		Summary: pipeline.Summary{
			RecordCounts: map[seq.SourceID]int64{"b.fq": 1500, "a.fq": 3},
			BPCounts: map[seq.SourceID]pipeline.BasePairs{
				"b.fq": {150000, 0},
				"a.fq": {35, 0},
			},
		},
		Details: pipeline.Report{"min_length": 5},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]report.Format{"": report.FormatText, "JSON": report.FormatJSON, "yml": report.FormatYAML} {
		got, err := report.ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := report.ParseFormat("xml")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestRender_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleDoc(), report.FormatText))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== stats ===\n"))
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "150,000")
	assert.Contains(t, out, "1,503")
	assert.Contains(t, out, "min_length: 5")
	assert.Less(t, strings.Index(out, "a.fq"), strings.Index(out, "b.fq"), "sources are sorted")
}

func TestRender_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleDoc(), report.FormatJSON))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))

	summary := raw["summary"].(map[string]any)
	assert.Equal(t, map[string]any{"a.fq": 3.0, "b.fq": 1500.0}, summary["record_counts"])
	assert.Equal(t, []any{35.0, 0.0}, summary["bp_counts"].(map[string]any)["a.fq"])
	assert.NoError(t, report.Validate(buf.Bytes()))
}

func TestRender_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleDoc(), report.FormatYAML))

	var doc report.Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, sampleDoc().Summary, doc.Summary)
	assert.Contains(t, buf.String(), "record_counts:")
}

func TestRender_UnknownFormat(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, report.Render(&bytes.Buffer{}, sampleDoc(), "csv"), report.ErrUnknownFormat)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"summary.json", "summary.yaml", "summary.yml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, report.Save(path, sampleDoc()))

			got, err := report.Load(path)
			require.NoError(t, err)
			assert.Equal(t, sampleDoc().Summary, got.Summary)
			assert.Equal(t, "stats", got.Command)
			assert.Equal(t, "0b6f", got.RunID)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := report.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestCodecFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".yaml", report.CodecFor("x.YML").Extension())
	assert.Equal(t, ".json", report.CodecFor("x.out").Extension())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  string
		valid bool
	}{
		{name: "minimal", data: `{"command":"stats","summary":{"record_counts":{},"bp_counts":{}}}`, valid: true},
		{name: "missing_summary", data: `{"command":"stats"}`},
		{name: "negative_count", data: `{"command":"x","summary":{"record_counts":{"a":-1},"bp_counts":{}}}`},
		{name: "short_bp", data: `{"command":"x","summary":{"record_counts":{},"bp_counts":{"a":[1]}}}`},
		{name: "extra_field", data: `{"command":"x","colour":"red","summary":{"record_counts":{},"bp_counts":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := report.Validate([]byte(tt.data))
			if tt.valid {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, report.ErrSchemaViolation)
		})
	}
}

func TestCheck_ListsViolations(t *testing.T) {
	t.Parallel()

	violations, err := report.Check([]byte(`{"summary":{"record_counts":{"a":1.5},"bp_counts":{}}}`))
	require.NoError(t, err)
	assert.Len(t, violations, 2)

	_, err = report.Check([]byte("{not json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, report.ErrSchemaViolation)
}

func TestSchema_IsJSON(t *testing.T) {
	t.Parallel()

	var schema map[string]any
	require.NoError(t, json.Unmarshal(report.Schema(), &schema))
	assert.Equal(t, "object", schema["type"])
}
