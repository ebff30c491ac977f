// Package session implements the game's view state machine and scoring.
package session

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// View is the screen the player is on.
type View int

// Views.
const (
	ViewWelcome View = iota
	ViewModuleSelection
	ViewScenario
	ViewModuleComplete
	ViewLeaderboard
)

func (v View) String() string {
	switch v {
	case ViewWelcome:
		return "welcome"
	case ViewModuleSelection:
		return "module_selection"
	case ViewScenario:
		return "scenario"
	case ViewModuleComplete:
		return "module_complete"
	case ViewLeaderboard:
		return "leaderboard"
	default:
		return "unknown"
	}
}

// Session is the per-player progress.
type Session struct {
	ID               string
	Nickname         string
	Score            int
	CompletedModules []model.ModuleID
	CurrentModule    model.ModuleID
	IsComplete       bool
}

// HasCompleted reports whether id is in CompletedModules.
func (s Session) HasCompleted(id model.ModuleID) bool {
	return slices.Contains(s.CompletedModules, id)
}

// ShieldLevel is the completed share of the catalog as a percentage.
func (s Session) ShieldLevel() int {
	total := len(model.Catalog())
	if total == 0 {
		return 0
	}
	return (len(s.CompletedModules)*100 + total/2) / total
}

// State is everything the controller owns.
type State struct {
	View            View
	Session         Session
	ModuleStartTime time.Time
	LastRun         *model.ModuleRunStats
}

// Initial returns the state at application start and after reset.
func Initial() State {
	return State{View: ViewWelcome}
}

func (s State) clone() State {
	out := s
	out.Session.CompletedModules = slices.Clone(s.Session.CompletedModules)
	if s.LastRun != nil {
		run := *s.LastRun
		out.LastRun = &run
	}
	return out
}

// Event drives a transition.
type Event interface {
	isEvent()
}

// Start begins a session for a player.
type Start struct {
	Nickname  string
	SessionID string
}

// ShowLeaderboard opens the leaderboard.
type ShowLeaderboard struct{}

// Back leaves the leaderboard.
type Back struct{}

// SelectModule enters a scenario.
type SelectModule struct {
	Module model.ModuleID
}

// Complete ends the active scenario with the engine's points.
type Complete struct {
	Points int
	TimeUp bool
}

// PlayAgain leaves the module-complete screen.
type PlayAgain struct{}

// Reset returns to the welcome screen and clears the session.
type Reset struct{}

func (Start) isEvent()           {}
func (ShowLeaderboard) isEvent() {}
func (Back) isEvent()            {}
func (SelectModule) isEvent()    {}
func (Complete) isEvent()        {}
func (PlayAgain) isEvent()       {}
func (Reset) isEvent()           {}

// Effect is a side effect requested by a transition.
type Effect interface {
	isEffect()
}

// RecordScore asks the leaderboard to store a finished session.
type RecordScore struct {
	Nickname string
	Score    int
}

// RecordRun asks the history to store a finished module.
type RecordRun struct {
	Run model.ModuleRun
}

func (RecordScore) isEffect() {}
func (RecordRun) isEffect()   {}

// Transition applies ev to s at time now. ok is false when the event is not
// valid in the current state; s is then returned unchanged.
func Transition(s State, ev Event, now time.Time, rules model.Rules) (next State, effects []Effect, ok bool) {
	switch ev := ev.(type) {
	case Start:
		if s.View != ViewWelcome {
			return s, nil, false
		}
		name := NormalizeNickname(ev.Nickname, rules.NicknameMax)
		if name == "" {
			return s, nil, false
		}
		next = s.clone()
		next.Session = Session{ID: ev.SessionID, Nickname: name, CompletedModules: []model.ModuleID{}}
		next.View = ViewModuleSelection
		return next, nil, true

	case ShowLeaderboard:
		switch {
		case s.View == ViewWelcome, s.View == ViewModuleSelection:
		case s.View == ViewModuleComplete && s.Session.IsComplete:
		default:
			return s, nil, false
		}
		next = s.clone()
		next.View = ViewLeaderboard
		return next, nil, true

	case Back:
		if s.View != ViewLeaderboard {
			return s, nil, false
		}
		next = s.clone()
		if s.Session.Nickname != "" && !s.Session.IsComplete {
			next.View = ViewModuleSelection
		} else {
			next.View = ViewWelcome
		}
		return next, nil, true

	case SelectModule:
		if s.View != ViewModuleSelection || s.Session.IsComplete {
			return s, nil, false
		}
		if _, known := model.LookupModule(ev.Module); !known || s.Session.HasCompleted(ev.Module) {
			return s, nil, false
		}
		next = s.clone()
		next.Session.CurrentModule = ev.Module
		next.ModuleStartTime = now
		next.View = ViewScenario
		return next, nil, true

	case Complete:
		if s.View != ViewScenario || s.Session.CurrentModule == "" {
			return s, nil, false
		}
		return complete(s, ev, now, rules)

	case PlayAgain:
		if s.View != ViewModuleComplete {
			return s, nil, false
		}
		next = s.clone()
		if s.Session.IsComplete {
			next.View = ViewLeaderboard
			return next, nil, true
		}
		next.Session.CurrentModule = ""
		next.View = ViewModuleSelection
		return next, nil, true

	case Reset:
		return Initial(), nil, true
	}
	return s, nil, false
}

func complete(s State, ev Complete, now time.Time, rules model.Rules) (State, []Effect, bool) {
	bonus := TimeBonus(s.ModuleStartTime, now, ev.Points, ev.TimeUp, rules)
	module := s.Session.CurrentModule
	next := s.clone()
	next.LastRun = &model.ModuleRunStats{Module: module, Points: ev.Points, TimeBonus: bonus}

	if !next.Session.HasCompleted(module) {
		next.Session.CompletedModules = append(next.Session.CompletedModules, module)
	}
	wasComplete := s.Session.IsComplete
	next.Session.IsComplete = len(next.Session.CompletedModules) == len(model.Catalog())
	next.Session.Score += ev.Points + bonus

	effects := []Effect{RecordRun{Run: model.ModuleRun{
		SessionID: s.Session.ID,
		Nickname:  s.Session.Nickname,
		Module:    module,
		Points:    ev.Points,
		TimeBonus: bonus,
		TimeUp:    ev.TimeUp,
		StartedAt: s.ModuleStartTime,
		EndedAt:   now,
	}}}
	if next.Session.IsComplete && !wasComplete {
		effects = append(effects, RecordScore{Nickname: next.Session.Nickname, Score: next.Session.Score})
	}

	if next.Session.IsComplete {
		// A finished session has no active module.
		next.Session.CurrentModule = ""
	}
	next.ModuleStartTime = time.Time{}
	next.View = ViewModuleComplete
	return next, effects, true
}

// TimeBonus awards BonusPerSecond for every whole second left under the
// time limit. Time-ups, non-positive scores and unknown start times earn nothing.
func TimeBonus(start, end time.Time, points int, timeUp bool, rules model.Rules) int {
	if start.IsZero() || timeUp || points <= 0 {
		return 0
	}
	elapsed := int(end.Sub(start) / time.Second)
	remaining := int(rules.TimeLimit/time.Second) - elapsed
	if remaining <= 0 {
		return 0
	}
	return remaining * rules.BonusPerSecond
}

// NormalizeNickname trims name and caps it at max runes (0 means no cap).
func NormalizeNickname(name string, max int) string {
	name = strings.TrimSpace(name)
	if max > 0 && utf8.RuneCountInString(name) > max {
		name = strings.TrimSpace(string([]rune(name)[:max]))
	}
	return name
}
