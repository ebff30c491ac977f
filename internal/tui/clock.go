package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/cyberdefender/internal/countdown"
)

type tickMsg struct {
	gen       int
	remaining int
}

type timeUpMsg struct {
	gen int
}

// moduleClock bridges a countdown.Timer into the Bubble Tea event loop.
// Ticks are dropped when the loop is busy; the time-up message is not.
type moduleClock struct {
	gen   int
	timer *countdown.Timer
	ch    chan tea.Msg
	done  chan struct{}
	once  sync.Once
}

func startModuleClock(clock countdown.Clock, gen int, start time.Time, limit time.Duration) *moduleClock {
	c := &moduleClock{
		gen:  gen,
		ch:   make(chan tea.Msg, 4),
		done: make(chan struct{}),
	}
	c.timer = countdown.Start(clock, countdown.Config{
		Start: start,
		Limit: limit,
		OnTick: func(remaining int) {
			select {
			case c.ch <- tickMsg{gen: gen, remaining: remaining}:
			case <-c.done:
			default:
			}
		},
		OnTimeUp: func() {
			select {
			case c.ch <- timeUpMsg{gen: gen}:
			case <-c.done:
			}
		},
	})
	return c
}

// listen waits for the next timer message. It returns nil once stopped.
func (c *moduleClock) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-c.ch:
			return msg
		case <-c.done:
			return nil
		}
	}
}

func (c *moduleClock) remaining() int {
	return c.timer.Remaining()
}

func (c *moduleClock) stop() {
	c.timer.Stop()
	c.once.Do(func() { close(c.done) })
}
