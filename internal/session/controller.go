package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// ScoreRecorder persists a finished session's total.
type ScoreRecorder interface {
	Record(ctx context.Context, nickname string, score int)
}

// RunRecorder persists a finished module.
type RunRecorder interface {
	InsertRun(ctx context.Context, run model.ModuleRun) (int64, error)
}

// Controller owns the session state and executes transition effects.
// It is not safe for concurrent use; the UI drives it from one goroutine.
type Controller struct {
	state  State
	rules  model.Rules
	scores ScoreRecorder
	runs   RunRecorder
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRunRecorder stores every finished module.
func WithRunRecorder(runs RunRecorder) Option {
	return func(c *Controller) { c.runs = runs }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// NewController returns a controller in the initial state.
func NewController(rules model.Rules, scores ScoreRecorder, opts ...Option) *Controller {
	c := &Controller{
		state:  Initial(),
		rules:  rules,
		scores: scores,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state.clone()
}

// Rules returns the scoring rules in effect.
func (c *Controller) Rules() model.Rules {
	return c.rules
}

// Dispatch applies ev. It reports false, leaving the state untouched, when
// the event is not valid from the current view.
func (c *Controller) Dispatch(ctx context.Context, ev Event) bool {
	if start, ok := ev.(Start); ok && start.SessionID == "" {
		start.SessionID = c.newID()
		ev = start
	}
	from := c.state.View
	next, effects, ok := Transition(c.state, ev, c.now(), c.rules)
	if !ok {
		c.logger.Debug("ignored event", zap.String("view", from.String()), zap.String("event", eventName(ev)))
		return false
	}
	c.state = next
	c.logger.Debug("transition",
		zap.String("event", eventName(ev)),
		zap.String("from", from.String()),
		zap.String("to", next.View.String()))
	for _, effect := range effects {
		c.apply(ctx, effect)
	}
	return true
}

func (c *Controller) apply(ctx context.Context, effect Effect) {
	switch e := effect.(type) {
	case RecordScore:
		if c.scores != nil {
			c.scores.Record(ctx, e.Nickname, e.Score)
		}
	case RecordRun:
		c.logger.Info("module complete",
			zap.String("module", string(e.Run.Module)),
			zap.Int("points", e.Run.Points),
			zap.Int("bonus", e.Run.TimeBonus),
			zap.Bool("time_up", e.Run.TimeUp))
		if c.runs == nil {
			return
		}
		if _, err := c.runs.InsertRun(ctx, e.Run); err != nil {
			c.logger.Warn("failed to save module run", zap.Error(err))
		}
	}
}

func eventName(ev Event) string {
	switch ev.(type) {
	case Start:
		return "start"
	case ShowLeaderboard:
		return "show_leaderboard"
	case Back:
		return "back"
	case SelectModule:
		return "select_module"
	case Complete:
		return "complete"
	case PlayAgain:
		return "play_again"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}
