// Package scenario implements the three training engines.
package scenario

import (
	"errors"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// Engine errors.
var (
	ErrCompleted      = errors.New("module already completed")
	ErrUnknownItem    = errors.New("unknown item")
	ErrNothingPending = errors.New("no items pending")
	ErrCriteriaUnmet  = errors.New("password does not meet all criteria")
	ErrUnknownTarget  = errors.New("unknown destination")
)

// Result is what an engine reports when it finishes.
type Result struct {
	Module model.ModuleID
	Points int
	TimeUp bool
}

// CompleteFunc receives an engine's result exactly once.
type CompleteFunc func(Result)

// Scoring holds the per-action point values.
type Scoring struct {
	Correct   int
	Incorrect int
	Password  int
}

// ScoringFromRules extracts the engine point values.
func ScoringFromRules(rules model.Rules) Scoring {
	return Scoring{
		Correct:   rules.CorrectPoints,
		Incorrect: rules.IncorrectPoints,
		Password:  rules.PasswordPoints,
	}
}

// Outcome describes one resolved item.
type Outcome struct {
	Correct bool
	Delta   int
	Message string
}

// Engine is the contract shared by all modules.
type Engine interface {
	Module() model.ModuleID
	Points() int
	Completed() bool
	// EndEarly reports the current points and finishes the module.
	EndEarly() error
	// TimeUp reports the current points with TimeUp set and locks the engine.
	TimeUp()
}

// completion guarantees a single report per play-through.
type completion struct {
	module   model.ModuleID
	onDone   CompleteFunc
	reported bool
}

func (c *completion) report(points int, timeUp bool) bool {
	if c.reported {
		return false
	}
	c.reported = true
	if c.onDone != nil {
		c.onDone(Result{Module: c.module, Points: points, TimeUp: timeUp})
	}
	return true
}

// Module returns the engine's module id.
func (c *completion) Module() model.ModuleID {
	return c.module
}

// Completed reports whether the engine has reported its result.
func (c *completion) Completed() bool {
	return c.reported
}

// queue is the one-shot pending item list used by the sorting engines.
type queue[T any] struct {
	completion
	scoring   Scoring
	items     []T
	id        func(T) string
	points    int
	correct   int
	incorrect int
}

func (q *queue[T]) Points() int { return q.points }

// Pending returns the unresolved items in presentation order.
func (q *queue[T]) Pending() []T {
	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// Tally returns the number of correct and incorrect resolutions.
func (q *queue[T]) Tally() (correct, incorrect int) {
	return q.correct, q.incorrect
}

func (q *queue[T]) take(itemID string) (T, error) {
	var zero T
	if q.reported {
		return zero, ErrCompleted
	}
	for i, item := range q.items {
		if q.id(item) == itemID {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return item, nil
		}
	}
	return zero, ErrUnknownItem
}

func (q *queue[T]) score(correct bool) int {
	delta := q.scoring.Incorrect
	if correct {
		delta = q.scoring.Correct
		q.correct++
	} else {
		q.incorrect++
	}
	q.points += delta
	if len(q.items) == 0 {
		q.report(q.points, false)
	}
	return delta
}

// EndEarly submits the current points. It is only allowed while items remain.
func (q *queue[T]) EndEarly() error {
	if q.reported {
		return ErrCompleted
	}
	if len(q.items) == 0 {
		return ErrNothingPending
	}
	q.report(q.points, false)
	return nil
}

// TimeUp reports the current points with TimeUp set.
func (q *queue[T]) TimeUp() {
	q.report(q.points, true)
}
