package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

type recordedScore struct {
	nickname string
	score    int
}

type fakeScores struct {
	calls []recordedScore
}

func (f *fakeScores) Record(_ context.Context, nickname string, score int) {
	f.calls = append(f.calls, recordedScore{nickname, score})
}

type fakeRuns struct {
	runs []model.ModuleRun
	err  error
}

func (f *fakeRuns) InsertRun(_ context.Context, run model.ModuleRun) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.runs = append(f.runs, run)
	return int64(len(f.runs)), nil
}

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func TestControllerFullSession(t *testing.T) {
	scores := &fakeScores{}
	runs := &fakeRuns{}
	clock := &stepClock{now: t0}
	c := NewController(model.DefaultRules(), scores,
		WithClock(clock.Now),
		WithRunRecorder(runs),
		WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	require.True(t, c.Dispatch(ctx, Start{Nickname: "Ana"}))
	sid := c.State().Session.ID
	assert.NotEmpty(t, sid)

	for _, id := range []model.ModuleID{model.ModuleDocuments, model.ModulePhishing, model.ModulePassword} {
		require.True(t, c.Dispatch(ctx, SelectModule{Module: id}))
		clock.now = clock.now.Add(30 * time.Second)
		require.True(t, c.Dispatch(ctx, Complete{Points: 60}))
		if !c.State().Session.IsComplete {
			require.True(t, c.Dispatch(ctx, PlayAgain{}))
		}
	}

	state := c.State()
	assert.Equal(t, 3*180, state.Session.Score)
	require.Len(t, scores.calls, 1)
	assert.Equal(t, recordedScore{"Ana", 540}, scores.calls[0])
	require.Len(t, runs.runs, 3)
	for _, run := range runs.runs {
		assert.Equal(t, sid, run.SessionID)
		assert.Equal(t, 120, run.TimeBonus)
	}

	assert.False(t, c.Dispatch(ctx, Complete{Points: 60}), "no active module")
	assert.Len(t, scores.calls, 1)
}

func TestControllerRunFailureDoesNotBlockProgress(t *testing.T) {
	runs := &fakeRuns{err: errors.New("read-only database")}
	c := NewController(model.DefaultRules(), nil, WithRunRecorder(runs))
	ctx := context.Background()

	require.True(t, c.Dispatch(ctx, Start{Nickname: "Bo"}))
	require.True(t, c.Dispatch(ctx, SelectModule{Module: model.ModulePassword}))
	require.True(t, c.Dispatch(ctx, Complete{Points: 0}))
	assert.Equal(t, ViewModuleComplete, c.State().View)
}

func TestControllerStateIsACopy(t *testing.T) {
	c := NewController(model.DefaultRules(), nil)
	ctx := context.Background()
	require.True(t, c.Dispatch(ctx, Start{Nickname: "Cy"}))
	require.True(t, c.Dispatch(ctx, SelectModule{Module: model.ModuleDocuments}))
	require.True(t, c.Dispatch(ctx, Complete{Points: 5}))

	st := c.State()
	st.Session.CompletedModules[0] = model.ModulePassword
	st.LastRun.Points = 999

	again := c.State()
	assert.Equal(t, model.ModuleDocuments, again.Session.CompletedModules[0])
	assert.Equal(t, 5, again.LastRun.Points)
}

func TestControllerRejectsInvalidEvents(t *testing.T) {
	c := NewController(model.DefaultRules(), nil)
	ctx := context.Background()

	assert.False(t, c.Dispatch(ctx, SelectModule{Module: model.ModuleDocuments}))
	assert.False(t, c.Dispatch(ctx, PlayAgain{}))
	assert.False(t, c.Dispatch(ctx, Back{}))
	assert.Equal(t, ViewWelcome, c.State().View)
	assert.True(t, c.Dispatch(ctx, Reset{}))
}
