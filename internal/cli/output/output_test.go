package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		mode Mode
		want Mode
	}{
		{ModeAuto, ModeMarkdown},
		{"", ModeMarkdown},
		{"bogus", ModeMarkdown},
		{ModeText, ModeText},
		{ModeMarkdown, ModeMarkdown},
		{ModeJSON, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRenderer(&buf, &buf, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "## Sub", FormatHeader(2, "Sub"))
	assert.Equal(t, "# Low", FormatHeader(0, "Low"))
	assert.Equal(t, "- **Dimension:** 3", FormatKeyValue("Dimension", "3"))
}

func TestMarkdownOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeMarkdown)

	r.Header(1, "Functions")
	r.KeyValue("Count", "2")
	r.Error("boom")

	assert.Contains(t, out.String(), "# Functions\n")
	assert.Contains(t, out.String(), "- **Count:** 2\n")
	assert.Contains(t, errOut.String(), "Error: boom")
	assert.NotContains(t, out.String(), "boom")
}

func TestTextOutputWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeText)

	r.Header(1, "Functions")
	r.KeyValue("Count", "2")

	// A buffer has no colour profile, so styles render as plain text.
	assert.Contains(t, out.String(), "Functions")
	assert.Contains(t, out.String(), "Count: 2")
}

func TestTable(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRenderer(&out, &out, ModeMarkdown)
		r.Table([]string{"Name", "Expansion"}, [][]string{{"circle", "x^2 + y^2 = 25"}})
		assert.Contains(t, out.String(), "| Name | Expansion |")
		assert.Contains(t, out.String(), "| circle | x^2 + y^2 = 25 |")
	})

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRenderer(&out, &out, ModeText)
		r.Table([]string{"Name"}, [][]string{{"circle"}})
		assert.Contains(t, out.String(), "┌")
		assert.Contains(t, out.String(), "circle")
	})
}

func TestJSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeJSON)
	require.NoError(t, r.JSON(map[string]int{"dimension": 3}))
	assert.Equal(t, "{\n  \"dimension\": 3\n}\n", out.String())
}
