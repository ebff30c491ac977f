package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Module", "Runs", "Best"}
	rows := [][]string{
		{"documents", "12", "100"},
		{"password", "3", "80"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	require.Len(t, lines, 3)
	assert.Equal(t, "Module     Runs  Best", lines[0])
	assert.Equal(t, "documents    12   100", lines[1])
	assert.Equal(t, "password      3    80", lines[2])
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "Score"}, [][]string{{"日本", "5"}, {"ab", "10"}}, map[int]bool{1: true})
	require.Len(t, lines, 3)
	assert.Equal(t, "日本      5", lines[1])
	assert.Equal(t, "ab       10", lines[2])
}

func TestFormatTableEmpty(t *testing.T) {
	assert.Nil(t, formatTable(nil, nil, nil))
}
