package status

import (
	"bytes"
	"testing"

	"github.com/abhisek/qperformance/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlain(t *testing.T) {
	tests := []struct {
		name string
		out  pipeline.Outcome
		want string
	}{
		{
			name: "saved without warnings",
			out:  pipeline.Outcome{Kind: pipeline.KindSuccess, Status: pipeline.StatusSaved},
			want: "Status: Saved\n",
		},
		{
			name: "saved with warnings",
			out: pipeline.Outcome{
				Kind:     pipeline.KindSuccess,
				Status:   pipeline.StatusSaved,
				Warnings: []string{"w1", "w2"},
			},
			want: "Status: Saved\n\nWarnings:\nw1\nw2\n",
		},
		{
			name: "validation failure",
			out: pipeline.Outcome{
				Kind:   pipeline.KindValidationFailure,
				Status: "Question set location does not exist.",
			},
			want: "Status: Question set location does not exist.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plain(tt.out))
		})
	}
}

func TestLines(t *testing.T) {
	lines := Lines(pipeline.Outcome{Kind: pipeline.KindSuccess, Status: "Saved", Warnings: []string{"skipped set3.rtf"}})
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Saved")
	assert.Empty(t, lines[1])
	assert.Contains(t, lines[2], "Warnings:")
	assert.Contains(t, lines[3], "skipped set3.rtf")

	assert.Len(t, Lines(pipeline.Outcome{Kind: pipeline.KindEngineFailure, Status: "x"}), 1)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, pipeline.Outcome{
		Kind:     pipeline.KindPersistenceFailure,
		Status:   "Error writing to output file",
		Warnings: []string{"unmatched reference 12"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Status:")
	assert.Contains(t, buf.String(), "Error writing to output file")
	assert.Contains(t, buf.String(), "unmatched reference 12")
}
