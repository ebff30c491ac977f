package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/cyberdefender/internal/content"
	"github.com/verte-zerg/cyberdefender/internal/model"
	"github.com/verte-zerg/cyberdefender/internal/session"
)

type recordedScore struct {
	nickname string
	score    int
}

type fakeScores struct {
	recorded []recordedScore
	entries  []model.LeaderboardEntry
}

func (f *fakeScores) Record(_ context.Context, nickname string, score int) {
	f.recorded = append(f.recorded, recordedScore{nickname: nickname, score: score})
	f.entries = append(f.entries, model.LeaderboardEntry{Nickname: nickname, Score: score, Date: "2026-01-01"})
}

func (f *fakeScores) Read(context.Context) []model.LeaderboardEntry {
	return f.entries
}

type harness struct {
	m      *Model
	scores *fakeScores
	pack   content.Pack
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	now := time.Now()
	scores := &fakeScores{}
	ctrl := session.NewController(model.DefaultRules(), scores, session.WithClock(func() time.Time { return now }))
	pack := content.DefaultPack()
	m := NewModel(context.Background(), Options{
		Controller: ctrl,
		Content:    content.NewSource(nil, pack, 0, nil),
		Board:      scores,
		Logger:     zaptest.NewLogger(t),
	})
	t.Cleanup(m.stopClock)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &harness{m: m, scores: scores, pack: pack}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+e":
			msg = tea.KeyMsg{Type: tea.KeyCtrlE}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		h.m.Update(msg)
	}
}

func (h *harness) state() session.State {
	return h.m.ctrl.State()
}

func (h *harness) start(name string) {
	h.press(name, "enter")
}

func (h *harness) deliverDocuments() {
	h.m.Update(documentsMsg{gen: h.m.gen, items: h.pack.Documents, fallback: true})
}

func (h *harness) deliverEmails() {
	h.m.Update(emailsMsg{gen: h.m.gen, items: h.pack.Emails, fallback: true})
}

func sensitivityKey(s model.Sensitivity) string {
	for i, v := range model.Sensitivities() {
		if v == s {
			return string(rune('1' + i))
		}
	}
	return ""
}

func TestWelcomeRequiresNickname(t *testing.T) {
	h := newHarness(t)
	h.press("   ", "enter")
	assert.Equal(t, session.ViewWelcome, h.state().View)
	assert.Contains(t, h.m.View(), "Please enter a nickname")

	h.start("Ana")
	assert.Equal(t, session.ViewModuleSelection, h.state().View)
	assert.Equal(t, "Ana", h.state().Session.Nickname)
}

func TestPasswordModuleAwardsPointsAndBonus(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("3")
	require.Equal(t, session.ViewScenario, h.state().View)
	require.NotNil(t, h.m.pass)
	assert.Contains(t, h.m.View(), "Time 01:30")

	h.press("weak", "enter")
	assert.Equal(t, session.ViewScenario, h.state().View)
	assert.Contains(t, h.m.notice, "does not meet")

	h.press("Str0ng!Passw0rd", "enter")
	st := h.state()
	require.Equal(t, session.ViewModuleComplete, st.View)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, 100, st.LastRun.Points)
	assert.Equal(t, 180, st.LastRun.TimeBonus)
	assert.Equal(t, 280, st.Session.Score)
	assert.Nil(t, h.m.mclock)
	assert.Contains(t, h.m.View(), "Module Score: 100 + Time Bonus: 180")
}

func TestDocumentsModuleFlow(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("1")
	require.True(t, h.m.loading)
	assert.Contains(t, h.m.View(), "Generating scenario")

	h.deliverDocuments()
	require.NotNil(t, h.m.docs)
	assert.Contains(t, h.m.View(), "offline scenario")

	for range h.pack.Documents {
		doc := h.m.docs.Pending()[0]
		h.press(sensitivityKey(doc.Sensitivity))
		require.NotNil(t, h.m.feedback)
		assert.True(t, h.m.feedback.Correct)
		if h.m.docs == nil {
			break
		}
		h.press("enter")
	}

	st := h.state()
	require.Equal(t, session.ViewModuleComplete, st.View)
	assert.Equal(t, 100, st.LastRun.Points)
	assert.NotNil(t, h.m.feedback, "last feedback stays visible over the summary")

	h.press("enter")
	assert.Nil(t, h.m.feedback)
	h.press("enter")
	assert.Equal(t, session.ViewModuleSelection, h.state().View)
	assert.Equal(t, 1, h.m.selCursor)
}

func TestMisclassifiedDocumentNamesCorrectStorage(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("1")
	h.deliverDocuments()

	h.press(sensitivityKey(model.SensitivityPublic))
	require.NotNil(t, h.m.feedback)
	assert.False(t, h.m.feedback.Correct)
	assert.Equal(t, -10, h.m.feedback.Delta)
	assert.Contains(t, h.m.feedback.Message, "Encrypted Secure Storage")
}

func TestEndEarlyReportsCurrentPoints(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("2")
	h.deliverEmails()
	require.NotNil(t, h.m.mail)

	// email-1 is legitimate: delete it.
	h.press("1", "enter", "e")
	st := h.state()
	require.Equal(t, session.ViewModuleComplete, st.View)
	assert.Equal(t, 20, st.LastRun.Points)
	assert.Equal(t, 180, st.LastRun.TimeBonus)
}

func TestTimeUpReportsPointsWithoutBonus(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("2")
	h.deliverEmails()
	h.press("1", "enter", "2", "enter")
	require.Equal(t, 40, h.m.mail.Points())

	h.m.Update(timeUpMsg{gen: h.m.gen})
	st := h.state()
	require.Equal(t, session.ViewModuleComplete, st.View)
	assert.Equal(t, 40, st.LastRun.Points)
	assert.Equal(t, 0, st.LastRun.TimeBonus)
	assert.Equal(t, 40, st.Session.Score)
	assert.Equal(t, "Time's up!", h.m.notice)
}

func TestTimeUpWhileLoadingCompletesWithZero(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("1")
	gen := h.m.gen

	h.m.Update(timeUpMsg{gen: gen})
	st := h.state()
	require.Equal(t, session.ViewModuleComplete, st.View)
	assert.Equal(t, 0, st.LastRun.Points)
	assert.Equal(t, []model.ModuleID{model.ModuleDocuments}, st.Session.CompletedModules)

	// The batch that arrives after the module ended is discarded.
	h.m.Update(documentsMsg{gen: gen, items: h.pack.Documents})
	assert.Nil(t, h.m.docs)
}

func TestStaleTimerMessagesIgnored(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("3")
	old := h.m.gen
	h.press("ctrl+e")
	require.Equal(t, session.ViewModuleComplete, h.state().View)
	h.press("enter", "1")
	require.Equal(t, session.ViewScenario, h.state().View)

	h.m.Update(timeUpMsg{gen: old})
	assert.Equal(t, session.ViewScenario, h.state().View)
	h.m.Update(tickMsg{gen: old, remaining: 3})
	assert.NotEqual(t, 3, h.m.remaining)

	h.m.Update(tickMsg{gen: h.m.gen, remaining: 9})
	assert.Equal(t, 9, h.m.remaining)
	assert.Contains(t, h.m.View(), "Time 00:09")
}

func TestFullRunRecordsScoreOnce(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")

	h.press("3", "ctrl+e", "enter")
	h.press("1")
	h.deliverDocuments()
	h.press("e", "enter")
	h.press("2")
	h.deliverEmails()
	h.press("e")

	st := h.state()
	require.True(t, st.Session.IsComplete)
	assert.Empty(t, st.Session.CurrentModule)
	assert.Equal(t, model.ModulePhishing, st.LastRun.Module)
	assert.Contains(t, h.m.View(), "Training Complete!")
	assert.Contains(t, h.m.View(), "View Leaderboard")
	require.Len(t, h.scores.recorded, 1)
	assert.Equal(t, recordedScore{nickname: "Ana", score: 0}, h.scores.recorded[0])

	h.press("enter")
	assert.Equal(t, session.ViewLeaderboard, h.state().View)
	assert.Len(t, h.m.entries, 1)

	h.press("esc")
	assert.Equal(t, session.ViewWelcome, h.state().View)
	assert.Len(t, h.scores.recorded, 1)
}

func TestLeaderboardFromWelcome(t *testing.T) {
	h := newHarness(t)
	h.press("tab")
	require.Equal(t, session.ViewLeaderboard, h.state().View)
	assert.Contains(t, h.m.View(), "No scores yet")

	h.press("esc")
	assert.Equal(t, session.ViewWelcome, h.state().View)
}

func TestLeaderboardFromSelectionReturnsToSelection(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("l")
	require.Equal(t, session.ViewLeaderboard, h.state().View)
	h.press("esc")
	assert.Equal(t, session.ViewModuleSelection, h.state().View)
}

func TestCompletedModuleCannotBeReplayed(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("3", "ctrl+e", "enter", "3")
	assert.Equal(t, session.ViewModuleSelection, h.state().View)
	assert.Contains(t, h.m.notice, "already complete")
}

func TestResetFromScenario(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("1")
	h.deliverDocuments()
	h.press("1")
	require.NotNil(t, h.m.feedback)

	h.press("ctrl+r")
	st := h.state()
	assert.Equal(t, session.ViewWelcome, st.View)
	assert.Equal(t, "", st.Session.Nickname)
	assert.Nil(t, st.LastRun)
	assert.Nil(t, h.m.docs)
	assert.Nil(t, h.m.feedback)
	assert.Nil(t, h.m.mclock)
	assert.Equal(t, "", h.m.nickname.Value())
}

func TestHeaderShowsShieldAndUrgentTimer(t *testing.T) {
	h := newHarness(t)
	h.start("Ana")
	h.press("3", "ctrl+e", "enter", "1")
	h.m.Update(tickMsg{gen: h.m.gen, remaining: 10})

	header := h.m.renderHeader(h.state())
	assert.Contains(t, header, "Shield 33%")
	assert.Contains(t, header, "Time 00:10")
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "01:30", formatClock(90))
	assert.Equal(t, "00:05", formatClock(5))
}
