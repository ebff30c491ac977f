package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// RunLister loads run history.
type RunLister interface {
	ListRuns(ctx context.Context, filter model.RunFilter) ([]model.ModuleRun, error)
}

// Report contains the data shown by the stats command.
type Report struct {
	Filter model.RunFilter
	Runs   []model.ModuleRun
}

// BuildReport loads the runs selected by filter.
func BuildReport(ctx context.Context, lister RunLister, filter model.RunFilter) (Report, error) {
	if filter.Module != "" {
		if _, ok := model.LookupModule(filter.Module); !ok {
			return Report{}, fmt.Errorf("unknown module %q", filter.Module)
		}
	}
	if filter.Last < 0 {
		return Report{}, fmt.Errorf("last must be >= 0")
	}
	runs, err := lister.ListRuns(ctx, filter)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list runs: %w", err)
	}
	return Report{Filter: filter, Runs: runs}, nil
}

// Render prints the report.
func (r Report) Render(w io.Writer, useColor bool) error {
	return RenderSummary(w, r.Runs, useColor)
}
