// Package tui provides the Bubble Tea training interface.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/cyberdefender/internal/content"
	"github.com/verte-zerg/cyberdefender/internal/countdown"
	"github.com/verte-zerg/cyberdefender/internal/model"
	"github.com/verte-zerg/cyberdefender/internal/scenario"
	"github.com/verte-zerg/cyberdefender/internal/session"
)

// LeaderboardReader lists the stored high scores.
type LeaderboardReader interface {
	Read(ctx context.Context) []model.LeaderboardEntry
}

// Options wires the model to its collaborators.
type Options struct {
	Controller *session.Controller
	Content    content.Provider
	Board      LeaderboardReader
	Clock      countdown.Clock
	Logger     *zap.Logger
}

type documentsMsg struct {
	gen      int
	items    []model.DocumentItem
	fallback bool
}

type emailsMsg struct {
	gen      int
	items    []model.EmailItem
	fallback bool
}

// Model implements the Bubble Tea training UI.
type Model struct {
	ctx      context.Context
	ctrl     *session.Controller
	content  content.Provider
	board    LeaderboardReader
	clock    countdown.Clock
	logger   *zap.Logger
	keys     keyMap
	help     help.Model
	width    int
	height   int
	quitting bool

	nickname  textinput.Model
	selCursor int
	notice    string

	// Scenario state. gen increases on every module start so that timer
	// and fetch messages from an earlier module are discarded.
	gen          int
	mclock       *moduleClock
	remaining    int
	loading      bool
	spinner      spinner.Model
	fromFallback bool
	docs         *scenario.Classification
	mail         *scenario.Triage
	pass         *scenario.PasswordStation
	itemCursor   int
	feedback     *scenario.Outcome
	password     textinput.Model
	strength     progress.Model
	result       *scenario.Result

	entries     []model.LeaderboardEntry
	leaderboard table.Model
	tips        string
	tipsWidth   int
	tipsModule  model.ModuleID
}

// NewModel constructs the training UI.
func NewModel(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = countdown.RealClock()
	}
	m := &Model{
		ctx:     ctx,
		ctrl:    opts.Controller,
		content: opts.Content,
		board:   opts.Board,
		clock:   clock,
		logger:  logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	m.nickname = newNicknameInput(m.ctrl.Rules().NicknameMax)
	m.password = newPasswordInput()
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))
	m.strength = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30))
	m.leaderboard = newLeaderboardTable(nil, 10)
	return m
}

func newNicknameInput(limit int) textinput.Model {
	input := textinput.New()
	input.Prompt = "Nickname: "
	input.Placeholder = "Enter your name"
	input.CharLimit = limit
	input.Focus()
	return input
}

func newPasswordInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Password: "
	input.Placeholder = "Type a strong password"
	input.CharLimit = 64
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tickMsg:
		if m.mclock == nil || msg.gen != m.gen {
			return m, nil
		}
		m.remaining = msg.remaining
		return m, m.mclock.listen()
	case timeUpMsg:
		if m.mclock == nil || msg.gen != m.gen {
			return m, nil
		}
		m.remaining = 0
		m.handleTimeUp()
		return m, nil
	case documentsMsg:
		if msg.gen != m.gen || !m.loading || m.view() != session.ViewScenario {
			m.logger.Debug("discarding stale document batch", zap.Int("gen", msg.gen))
			return m, nil
		}
		m.loading = false
		m.fromFallback = msg.fallback
		m.docs = scenario.NewClassification(msg.items, m.scoring(), m.onEngineDone)
		return m, nil
	case emailsMsg:
		if msg.gen != m.gen || !m.loading || m.view() != session.ViewScenario {
			m.logger.Debug("discarding stale email batch", zap.Int("gen", msg.gen))
			return m, nil
		}
		m.loading = false
		m.fromFallback = msg.fallback
		m.mail = scenario.NewTriage(msg.items, m.scoring(), m.onEngineDone)
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		updated, cmd := m.strength.Update(msg)
		if p, ok := updated.(progress.Model); ok {
			m.strength = p
		}
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopClock()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reset):
		m.reset()
		return m, textinput.Blink
	}
	if m.feedback != nil {
		if key.Matches(msg, m.keys.Dismiss) {
			m.feedback = nil
		}
		return m, nil
	}
	switch m.view() {
	case session.ViewWelcome:
		return m.updateWelcome(msg)
	case session.ViewModuleSelection:
		return m.updateSelection(msg)
	case session.ViewScenario:
		return m.updateScenario(msg)
	case session.ViewModuleComplete:
		return m.updateComplete(msg)
	case session.ViewLeaderboard:
		return m.updateLeaderboard(msg)
	}
	return m, nil
}

func (m *Model) updateWelcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter:
		if !m.ctrl.Dispatch(m.ctx, session.Start{Nickname: m.nickname.Value()}) {
			m.notice = "Please enter a nickname to begin."
			return m, nil
		}
		m.notice = ""
		m.selCursor = m.firstOpenModule()
		m.nickname.Blur()
		return m, nil
	case msg.Type == tea.KeyTab || msg.Type == tea.KeyCtrlL:
		m.openLeaderboard()
		return m, nil
	}
	var cmd tea.Cmd
	m.nickname, cmd = m.nickname.Update(msg)
	return m, cmd
}

func (m *Model) updateSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	catalog := model.Catalog()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.selCursor = max(0, m.selCursor-1)
	case key.Matches(msg, m.keys.Down):
		m.selCursor = min(len(catalog)-1, m.selCursor+1)
	case key.Matches(msg, m.keys.Enter):
		return m, m.selectModule(catalog[m.selCursor].ID)
	case key.Matches(msg, m.keys.Leaderboard):
		m.openLeaderboard()
	default:
		for i, b := range m.keys.choices() {
			if key.Matches(msg, b) && i < len(catalog) {
				m.selCursor = i
				return m, m.selectModule(catalog[i].ID)
			}
		}
	}
	return m, nil
}

func (m *Model) selectModule(id model.ModuleID) tea.Cmd {
	if !m.ctrl.Dispatch(m.ctx, session.SelectModule{Module: id}) {
		m.notice = "That module is already complete."
		return nil
	}
	m.notice = ""
	return m.startScenario(id)
}

func (m *Model) startScenario(id model.ModuleID) tea.Cmd {
	m.clearScenario()
	m.gen++
	gen := m.gen
	st := m.ctrl.State()
	m.mclock = startModuleClock(m.clock, gen, st.ModuleStartTime, m.ctrl.Rules().TimeLimit)
	m.remaining = m.mclock.remaining()
	cmds := []tea.Cmd{m.mclock.listen()}

	switch id {
	case model.ModuleDocuments:
		m.loading = true
		provider := m.content
		ctx := m.ctx
		cmds = append(cmds, m.spinner.Tick, func() tea.Msg {
			items, fallback := provider.Documents(ctx)
			return documentsMsg{gen: gen, items: items, fallback: fallback}
		})
	case model.ModulePhishing:
		m.loading = true
		provider := m.content
		ctx := m.ctx
		cmds = append(cmds, m.spinner.Tick, func() tea.Msg {
			items, fallback := provider.Emails(ctx)
			return emailsMsg{gen: gen, items: items, fallback: fallback}
		})
	case model.ModulePassword:
		m.pass = scenario.NewPasswordStation(m.scoring(), m.onEngineDone)
		m.password.Reset()
		cmds = append(cmds, m.password.Focus())
	}
	m.logger.Debug("module started", zap.String("module", string(id)), zap.Int("gen", gen))
	return tea.Batch(cmds...)
}

func (m *Model) updateScenario(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.pass != nil:
		return m.updatePassword(msg)
	case m.docs != nil:
		m.updateQueue(msg, len(m.docs.Pending()), func(i, choice int) (scenario.Outcome, error) {
			doc := m.docs.Pending()[i]
			return m.docs.Resolve(doc.ID, model.Sensitivities()[choice])
		}, m.docs.EndEarly)
	case m.mail != nil:
		m.updateQueue(msg, len(m.mail.Pending()), func(i, choice int) (scenario.Outcome, error) {
			email := m.mail.Pending()[i]
			return m.mail.Resolve(email.ID, model.EmailActions()[choice])
		}, m.mail.EndEarly)
	}
	m.finishIfReported()
	return m, nil
}

func (m *Model) updateQueue(msg tea.KeyMsg, pending int, resolve func(item, choice int) (scenario.Outcome, error), endEarly func() error) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.itemCursor = max(0, m.itemCursor-1)
		return
	case key.Matches(msg, m.keys.Down):
		m.itemCursor = min(pending-1, m.itemCursor+1)
		return
	case key.Matches(msg, m.keys.EndEarly):
		if err := endEarly(); err != nil {
			m.logger.Debug("end early rejected", zap.Error(err))
		}
		return
	}
	if pending == 0 {
		return
	}
	for choice, b := range m.keys.choices() {
		if !key.Matches(msg, b) {
			continue
		}
		item := min(m.itemCursor, pending-1)
		out, err := resolve(item, choice)
		if err != nil {
			m.logger.Debug("resolve rejected", zap.Error(err))
			return
		}
		m.feedback = &out
		m.itemCursor = min(item, max(0, pending-2))
		return
	}
}

func (m *Model) updatePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if err := m.pass.Submit(); err != nil {
			if errors.Is(err, scenario.ErrCriteriaUnmet) {
				m.notice = "Your password does not meet every requirement yet."
			}
			return m, nil
		}
		m.finishIfReported()
		return m, nil
	case tea.KeyCtrlE:
		if err := m.pass.EndEarly(); err != nil {
			m.logger.Debug("end early rejected", zap.Error(err))
		}
		m.finishIfReported()
		return m, nil
	}
	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	m.pass.SetInput(m.password.Value())
	m.notice = ""
	return m, tea.Batch(cmd, m.strength.SetPercent(float64(m.pass.Strength())/100))
}

func (m *Model) updateComplete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if m.ctrl.Dispatch(m.ctx, session.PlayAgain{}) {
			m.afterTransition()
		}
	case key.Matches(msg, m.keys.Leaderboard):
		m.openLeaderboard()
	}
	return m, nil
}

func (m *Model) updateLeaderboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) || msg.Type == tea.KeyEnter {
		if m.ctrl.Dispatch(m.ctx, session.Back{}) {
			m.afterTransition()
		}
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.leaderboard, cmd = m.leaderboard.Update(msg)
	return m, cmd
}

func (m *Model) openLeaderboard() {
	if !m.ctrl.Dispatch(m.ctx, session.ShowLeaderboard{}) {
		return
	}
	m.afterTransition()
}

// afterTransition syncs widget state with the controller's view.
func (m *Model) afterTransition() {
	switch m.view() {
	case session.ViewLeaderboard:
		m.entries = nil
		if m.board != nil {
			m.entries = m.board.Read(m.ctx)
		}
		m.leaderboard = newLeaderboardTable(m.entries, m.tableHeight())
		m.nickname.Blur()
	case session.ViewWelcome:
		m.nickname.Focus()
	case session.ViewModuleSelection:
		m.nickname.Blur()
		m.notice = ""
		m.selCursor = m.firstOpenModule()
	}
}

func (m *Model) handleTimeUp() {
	switch {
	case m.docs != nil:
		m.docs.TimeUp()
	case m.mail != nil:
		m.mail.TimeUp()
	case m.pass != nil:
		m.pass.TimeUp()
	default:
		// Content never arrived; the module ends with nothing scored.
		m.onEngineDone(scenario.Result{Module: m.ctrl.State().Session.CurrentModule, Points: 0, TimeUp: true})
	}
	m.finishIfReported()
}

func (m *Model) onEngineDone(res scenario.Result) {
	if m.result == nil {
		m.result = &res
	}
}

// finishIfReported hands an engine result to the session exactly once.
func (m *Model) finishIfReported() {
	if m.result == nil {
		return
	}
	res := *m.result
	m.stopClock()
	if !m.ctrl.Dispatch(m.ctx, session.Complete{Points: res.Points, TimeUp: res.TimeUp}) {
		m.logger.Warn("module result ignored", zap.String("module", string(res.Module)))
	}
	if res.TimeUp {
		m.notice = "Time's up!"
	}
	m.clearScenario()
}

func (m *Model) reset() {
	m.stopClock()
	m.clearScenario()
	m.ctrl.Dispatch(m.ctx, session.Reset{})
	m.nickname.Reset()
	m.nickname.Focus()
	m.notice = ""
	m.feedback = nil
	m.selCursor = 0
	m.entries = nil
}

func (m *Model) stopClock() {
	if m.mclock != nil {
		m.mclock.stop()
		m.mclock = nil
	}
}

func (m *Model) clearScenario() {
	m.loading = false
	m.fromFallback = false
	m.docs = nil
	m.mail = nil
	m.pass = nil
	m.itemCursor = 0
	m.result = nil
	m.password.Blur()
}

func (m *Model) scoring() scenario.Scoring {
	return scenario.ScoringFromRules(m.ctrl.Rules())
}

func (m *Model) view() session.View {
	return m.ctrl.State().View
}

func (m *Model) firstOpenModule() int {
	st := m.ctrl.State()
	for i, mod := range model.Catalog() {
		if !st.Session.HasCompleted(mod.ID) {
			return i
		}
	}
	return 0
}

func (m *Model) resize() {
	m.help.Width = m.width
	m.strength.Width = max(10, min(40, m.width-20))
	m.leaderboard.SetHeight(m.tableHeight())
	m.nickname.Width = max(10, min(30, m.width-12))
	m.password.Width = max(10, min(40, m.width-12))
}

func (m *Model) tableHeight() int {
	if m.height <= 0 {
		return 12
	}
	return max(3, min(12, m.height-8))
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
