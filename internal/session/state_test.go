package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

var t0 = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func mustTransition(t *testing.T, s State, ev Event, now time.Time) (State, []Effect) {
	t.Helper()
	next, effects, ok := Transition(s, ev, now, model.DefaultRules())
	require.True(t, ok, "event %T rejected in view %s", ev, s.View)
	return next, effects
}

func startedState(t *testing.T) State {
	t.Helper()
	s, _ := mustTransition(t, Initial(), Start{Nickname: "Ana", SessionID: "sid"}, t0)
	return s
}

func TestStartTrimsAndRequiresNickname(t *testing.T) {
	_, _, ok := Transition(Initial(), Start{Nickname: "   "}, t0, model.DefaultRules())
	assert.False(t, ok)

	s, effects := mustTransition(t, Initial(), Start{Nickname: "  Ana  ", SessionID: "sid"}, t0)
	assert.Empty(t, effects)
	assert.Equal(t, ViewModuleSelection, s.View)
	assert.Equal(t, "Ana", s.Session.Nickname)
	assert.Equal(t, "sid", s.Session.ID)
	assert.Zero(t, s.Session.Score)
	assert.Empty(t, s.Session.CompletedModules)
	assert.False(t, s.Session.IsComplete)
}

func TestNormalizeNicknameCapsLength(t *testing.T) {
	assert.Equal(t, "abcdefghijklmno", NormalizeNickname("abcdefghijklmnopqrst", 15))
	assert.Equal(t, "héllo", NormalizeNickname(" héllo ", 15))
	assert.Equal(t, "ab", NormalizeNickname("ab c", 3))
	assert.Equal(t, "long name", NormalizeNickname("long name", 0))
}

func TestLeaderboardBackDestination(t *testing.T) {
	s, _ := mustTransition(t, Initial(), ShowLeaderboard{}, t0)
	assert.Equal(t, ViewLeaderboard, s.View)
	s, _ = mustTransition(t, s, Back{}, t0)
	assert.Equal(t, ViewWelcome, s.View)

	s = startedState(t)
	s, _ = mustTransition(t, s, ShowLeaderboard{}, t0)
	s, _ = mustTransition(t, s, Back{}, t0)
	assert.Equal(t, ViewModuleSelection, s.View)
}

func TestSelectModuleGuards(t *testing.T) {
	s := startedState(t)

	_, _, ok := Transition(s, SelectModule{Module: "nope"}, t0, model.DefaultRules())
	assert.False(t, ok, "unknown module")

	s, _ = mustTransition(t, s, SelectModule{Module: model.ModuleDocuments}, t0)
	assert.Equal(t, ViewScenario, s.View)
	assert.Equal(t, model.ModuleDocuments, s.Session.CurrentModule)
	assert.Equal(t, t0, s.ModuleStartTime)

	s, _ = mustTransition(t, s, Complete{Points: 0}, t0.Add(time.Second))
	s, _ = mustTransition(t, s, PlayAgain{}, t0)
	assert.Equal(t, ViewModuleSelection, s.View)
	assert.Empty(t, s.Session.CurrentModule)

	_, _, ok = Transition(s, SelectModule{Module: model.ModuleDocuments}, t0, model.DefaultRules())
	assert.False(t, ok, "completed module cannot be replayed")
}

func TestScenarioAQuickCompletionEarnsBonus(t *testing.T) {
	s := startedState(t)
	s, _ = mustTransition(t, s, SelectModule{Module: model.ModuleDocuments}, t0)

	s, effects := mustTransition(t, s, Complete{Points: 60}, t0.Add(30*time.Second+500*time.Millisecond))

	require.NotNil(t, s.LastRun)
	assert.Equal(t, model.ModuleRunStats{Module: model.ModuleDocuments, Points: 60, TimeBonus: 120}, *s.LastRun)
	assert.Equal(t, 180, s.Session.Score)
	assert.Equal(t, ViewModuleComplete, s.View)
	assert.True(t, s.ModuleStartTime.IsZero())
	require.Len(t, effects, 1)
	run := effects[0].(RecordRun).Run
	assert.Equal(t, model.ModuleDocuments, run.Module)
	assert.Equal(t, "sid", run.SessionID)
	assert.Equal(t, t0, run.StartedAt)
}

func TestScenarioBTimeUpEarnsNoBonus(t *testing.T) {
	s := startedState(t)
	s, _ = mustTransition(t, s, SelectModule{Module: model.ModulePhishing}, t0)

	s, _ = mustTransition(t, s, Complete{Points: 40, TimeUp: true}, t0.Add(90*time.Second))

	assert.Equal(t, model.ModuleRunStats{Module: model.ModulePhishing, Points: 40, TimeBonus: 0}, *s.LastRun)
	assert.Equal(t, 40, s.Session.Score)
	assert.True(t, s.Session.HasCompleted(model.ModulePhishing))
}

func TestTimeBonus(t *testing.T) {
	rules := model.DefaultRules()
	cases := []struct {
		name    string
		start   time.Time
		elapsed time.Duration
		points  int
		timeUp  bool
		want    int
	}{
		{"fast", t0, 10 * time.Second, 20, false, 160},
		{"partial second floors", t0, 10*time.Second + 999*time.Millisecond, 20, false, 160},
		{"time up", t0, 10 * time.Second, 20, true, 0},
		{"zero points", t0, 10 * time.Second, 0, false, 0},
		{"negative points", t0, 10 * time.Second, -30, false, 0},
		{"at limit", t0, 90 * time.Second, 20, false, 0},
		{"over limit", t0, 120 * time.Second, 20, false, 0},
		{"one second left", t0, 89 * time.Second, 20, false, 2},
		{"no start", time.Time{}, 0, 20, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end := t0.Add(tc.elapsed)
			assert.Equal(t, tc.want, TimeBonus(tc.start, end, tc.points, tc.timeUp, rules))
		})
	}
}

func TestCompleteWithoutActiveModuleIsNoop(t *testing.T) {
	s := startedState(t)
	_, _, ok := Transition(s, Complete{Points: 50}, t0, model.DefaultRules())
	assert.False(t, ok)

	broken := s
	broken.View = ViewScenario
	next, effects, ok := Transition(broken, Complete{Points: 50}, t0, model.DefaultRules())
	assert.False(t, ok)
	assert.Nil(t, effects)
	assert.Equal(t, broken, next)
}

func TestFullRunRecordsScoreOnce(t *testing.T) {
	s := startedState(t)
	var scores []RecordScore
	total := 0
	plays := []struct {
		module  model.ModuleID
		points  int
		elapsed time.Duration
		timeUp  bool
	}{
		{model.ModuleDocuments, 70, 40 * time.Second, false},
		{model.ModulePassword, 0, 5 * time.Second, false},
		{model.ModulePhishing, -20, 15 * time.Second, false},
	}
	now := t0
	for i, p := range plays {
		s, _ = mustTransition(t, s, SelectModule{Module: p.module}, now)
		now = now.Add(p.elapsed)
		var effects []Effect
		s, effects = mustTransition(t, s, Complete{Points: p.points, TimeUp: p.timeUp}, now)
		total += s.LastRun.Points + s.LastRun.TimeBonus
		for _, e := range effects {
			if rs, ok := e.(RecordScore); ok {
				scores = append(scores, rs)
			}
		}
		assert.Len(t, s.Session.CompletedModules, i+1)
		assert.Equal(t, p.module, s.LastRun.Module)
		if i < len(plays)-1 {
			assert.False(t, s.Session.IsComplete)
			assert.Equal(t, p.module, s.Session.CurrentModule)
			s, _ = mustTransition(t, s, PlayAgain{}, now)
		}
	}

	assert.True(t, s.Session.IsComplete)
	assert.Empty(t, s.Session.CurrentModule)
	assert.Equal(t, total, s.Session.Score)
	assert.Equal(t, 70+100-20, s.Session.Score)
	require.Len(t, scores, 1)
	assert.Equal(t, RecordScore{Nickname: "Ana", Score: total}, scores[0])
	assert.Equal(t, 100, s.Session.ShieldLevel())

	s, _ = mustTransition(t, s, PlayAgain{}, now)
	assert.Equal(t, ViewLeaderboard, s.View)
	assert.Empty(t, s.Session.CurrentModule)
	s, _ = mustTransition(t, s, Back{}, now)
	assert.Equal(t, ViewWelcome, s.View)
}

func TestShowLeaderboardFromCompleteNeedsFinishedSession(t *testing.T) {
	s := startedState(t)
	s, _ = mustTransition(t, s, SelectModule{Module: model.ModuleDocuments}, t0)
	s, _ = mustTransition(t, s, Complete{Points: 10}, t0)

	_, _, ok := Transition(s, ShowLeaderboard{}, t0, model.DefaultRules())
	assert.False(t, ok)
}

func TestResetFromAnyView(t *testing.T) {
	s := startedState(t)
	s, _ = mustTransition(t, s, SelectModule{Module: model.ModuleDocuments}, t0)

	s, effects := mustTransition(t, s, Reset{}, t0)
	assert.Empty(t, effects)
	assert.Equal(t, Initial(), s)
	assert.Nil(t, s.LastRun)
	assert.True(t, s.ModuleStartTime.IsZero())
}

func TestTransitionDoesNotAliasInput(t *testing.T) {
	s := startedState(t)
	s, _ = mustTransition(t, s, SelectModule{Module: model.ModuleDocuments}, t0)
	before := s.clone()

	_, _ = mustTransition(t, s, Complete{Points: 10}, t0)
	assert.Equal(t, before, s)
}

func TestShieldLevelRounds(t *testing.T) {
	assert.Equal(t, 0, Session{}.ShieldLevel())
	assert.Equal(t, 33, Session{CompletedModules: []model.ModuleID{model.ModuleDocuments}}.ShieldLevel())
	assert.Equal(t, 67, Session{CompletedModules: []model.ModuleID{model.ModuleDocuments, model.ModulePhishing}}.ShieldLevel())
}
