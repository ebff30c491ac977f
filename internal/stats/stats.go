// Package stats renders leaderboard and run history reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

const (
	sparkChars   = " .:-=+*#%@"
	colorReset   = "\x1b[0m"
	colorHeading = "\x1b[1;36m"
	colorGold    = "\x1b[33m"
)

// ModuleSummary aggregates the run history of one module.
type ModuleSummary struct {
	Module    model.ModuleID
	Runs      int
	TimeUps   int
	AvgPoints float64
	AvgTotal  float64
	Best      int
	Totals    []float64
}

// Summarize groups runs by module in catalog order. Modules without runs are omitted.
func Summarize(runs []model.ModuleRun) []ModuleSummary {
	byModule := map[model.ModuleID]*ModuleSummary{}
	for _, run := range runs {
		s, ok := byModule[run.Module]
		if !ok {
			s = &ModuleSummary{Module: run.Module, Best: run.Total()}
			byModule[run.Module] = s
		}
		s.Runs++
		if run.TimeUp {
			s.TimeUps++
		}
		s.AvgPoints += float64(run.Points)
		s.AvgTotal += float64(run.Total())
		if run.Total() > s.Best {
			s.Best = run.Total()
		}
		s.Totals = append(s.Totals, float64(run.Total()))
	}
	out := make([]ModuleSummary, 0, len(byModule))
	for _, m := range model.Catalog() {
		s, ok := byModule[m.ID]
		if !ok {
			continue
		}
		s.AvgPoints /= float64(s.Runs)
		s.AvgTotal /= float64(s.Runs)
		out = append(out, *s)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints per-module aggregates for the runs.
func RenderSummary(w io.Writer, runs []model.ModuleRun, useColor bool) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No module runs found.")
		return err
	}
	summaries := Summarize(runs)
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		title := string(s.Module)
		if m, ok := model.LookupModule(s.Module); ok {
			title = m.Title
		}
		rows = append(rows, []string{
			title,
			strconv.Itoa(s.Runs),
			strconv.Itoa(s.TimeUps),
			fmt.Sprintf("%.1f", s.AvgPoints),
			fmt.Sprintf("%.1f", s.AvgTotal),
			strconv.Itoa(s.Best),
			Sparkline(s.Totals),
		})
	}
	if err := writeHeading(w, fmt.Sprintf("Run history (%d runs)", len(runs)), useColor); err != nil {
		return err
	}
	lines := formatTable(
		[]string{"Module", "Runs", "Time-ups", "Avg points", "Avg total", "Best", "Trend"},
		rows,
		map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true},
	)
	return writeLines(w, lines)
}

// RenderLeaderboard prints ranked leaderboard entries.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry, useColor bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet. Be the first!")
		return err
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{strconv.Itoa(i + 1), e.Nickname, strconv.Itoa(e.Score), e.Date}
	}
	if err := writeHeading(w, "Leaderboard", useColor); err != nil {
		return err
	}
	lines := formatTable([]string{"Rank", "Name", "Score", "Date"}, rows, map[int]bool{0: true, 2: true})
	if useColor && len(lines) > 1 {
		lines[1] = colorGold + lines[1] + colorReset
	}
	return writeLines(w, lines)
}

// ShouldUseColor reports whether ANSI colour is appropriate for w.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func writeHeading(w io.Writer, heading string, useColor bool) error {
	if useColor {
		heading = colorHeading + heading + colorReset
	}
	_, err := fmt.Fprintln(w, heading)
	return err
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
