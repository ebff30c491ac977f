package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "+++", Sparkline([]float64{5, 5, 5}))
	assert.Equal(t, " @", Sparkline([]float64{0, 10}))
}

func TestSummarize(t *testing.T) {
	runs := []model.ModuleRun{
		{Module: model.ModulePassword, Points: 100, TimeBonus: 80},
		{Module: model.ModuleDocuments, Points: 40, TimeUp: true},
		{Module: model.ModuleDocuments, Points: 100, TimeBonus: 20},
	}
	got := Summarize(runs)
	require.Len(t, got, 2)

	docs := got[0]
	assert.Equal(t, model.ModuleDocuments, docs.Module)
	assert.Equal(t, 2, docs.Runs)
	assert.Equal(t, 1, docs.TimeUps)
	assert.InDelta(t, 70.0, docs.AvgPoints, 1e-9)
	assert.InDelta(t, 80.0, docs.AvgTotal, 1e-9)
	assert.Equal(t, 120, docs.Best)
	assert.Equal(t, []float64{40, 120}, docs.Totals)

	assert.Equal(t, model.ModulePassword, got[1].Module)
	assert.Equal(t, 180, got[1].Best)
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, nil, false))
	assert.Equal(t, "No module runs found.\n", buf.String())
}

func TestRenderLeaderboard(t *testing.T) {
	entries := []model.LeaderboardEntry{
		{Nickname: "Bo", Score: 200, Date: "2026-01-02"},
		{Nickname: "Ana", Score: 150, Date: "2026-01-01"},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderLeaderboard(&buf, entries, false))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Leaderboard", lines[0])
	assert.Equal(t, "Rank  Name  Score  Date", lines[1])
	assert.Equal(t, "   1  Bo      200  2026-01-02", lines[2])
	assert.Equal(t, "   2  Ana     150  2026-01-01", lines[3])
}

func TestRenderLeaderboardEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderLeaderboard(&buf, nil, true))
	assert.Contains(t, buf.String(), "No scores yet")
}

func TestShouldUseColorNonFile(t *testing.T) {
	assert.False(t, ShouldUseColor(&bytes.Buffer{}))
}
