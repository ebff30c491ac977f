// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// ModuleID identifies a training module.
type ModuleID string

// Known modules, in catalog order.
const (
	ModuleDocuments ModuleID = "documents"
	ModulePhishing  ModuleID = "phishing"
	ModulePassword  ModuleID = "password"
)

// Module describes a catalog entry.
type Module struct {
	ID          ModuleID
	Title       string
	Description string
}

var catalog = []Module{
	{
		ID:          ModuleDocuments,
		Title:       "Secure Document Handling",
		Description: "Move documents to the correct storage based on sensitivity.",
	},
	{
		ID:          ModulePhishing,
		Title:       "Phishing Email Challenge",
		Description: "Identify and correctly handle suspicious emails in an inbox.",
	},
	{
		ID:          ModulePassword,
		Title:       "Password Creation Station",
		Description: "Learn to build strong, secure passwords.",
	},
}

// Catalog returns the fixed module catalog in display order.
func Catalog() []Module {
	out := make([]Module, len(catalog))
	copy(out, catalog)
	return out
}

// LookupModule returns the catalog entry for id.
func LookupModule(id ModuleID) (Module, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// ParseModuleID validates a user supplied module identifier.
func ParseModuleID(s string) (ModuleID, error) {
	id := ModuleID(s)
	if _, ok := LookupModule(id); !ok {
		return "", fmt.Errorf("unknown module %q", s)
	}
	return id, nil
}

// Sensitivity is a document classification level.
type Sensitivity string

// Sensitivity levels, least to most restricted.
const (
	SensitivityPublic       Sensitivity = "Public"
	SensitivityInternal     Sensitivity = "Internal"
	SensitivityConfidential Sensitivity = "Confidential"
)

// Sensitivities lists the storage partition in display order.
func Sensitivities() []Sensitivity {
	return []Sensitivity{SensitivityPublic, SensitivityInternal, SensitivityConfidential}
}

// Valid reports whether s is one of the known levels.
func (s Sensitivity) Valid() bool {
	switch s {
	case SensitivityPublic, SensitivityInternal, SensitivityConfidential:
		return true
	}
	return false
}

// StorageName is the destination label shown for a sensitivity level.
func (s Sensitivity) StorageName() string {
	switch s {
	case SensitivityPublic:
		return "Public Folder"
	case SensitivityInternal:
		return "Internal Server"
	case SensitivityConfidential:
		return "Encrypted Secure Storage"
	default:
		return string(s)
	}
}

// DocumentItem is a document to be classified.
type DocumentItem struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Sensitivity Sensitivity `json:"sensitivity" yaml:"sensitivity"`
}

// EmailItem is an inbox entry to be triaged.
type EmailItem struct {
	ID          string `json:"id" yaml:"id"`
	Sender      string `json:"sender" yaml:"sender"`
	Subject     string `json:"subject" yaml:"subject"`
	BodyPreview string `json:"bodyPreview" yaml:"body-preview"`
	IsPhishing  bool   `json:"isPhishing" yaml:"phishing"`
}

// EmailAction is a triage disposition.
type EmailAction string

// Triage dispositions.
const (
	ActionDelete EmailAction = "Delete"
	ActionReport EmailAction = "Report Phishing"
	ActionReply  EmailAction = "Reply"
)

// EmailActions lists dispositions in display order.
func EmailActions() []EmailAction {
	return []EmailAction{ActionDelete, ActionReport, ActionReply}
}

// LeaderboardEntry is a persisted high score.
type LeaderboardEntry struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Date     string `json:"date"`
}

// ModuleRunStats is the result handed from a finished module to the session.
type ModuleRunStats struct {
	Module    ModuleID
	Points    int
	TimeBonus int
}

// ModuleRun is a completed module stored in run history.
type ModuleRun struct {
	SessionID string
	Nickname  string
	Module    ModuleID
	Points    int
	TimeBonus int
	TimeUp    bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Total is the score contribution of the run.
func (r ModuleRun) Total() int {
	return r.Points + r.TimeBonus
}

// RunFilter selects run history rows.
type RunFilter struct {
	Module ModuleID
	Last   int
}

// Rules holds the tunable scoring constants.
type Rules struct {
	TimeLimit       time.Duration
	BonusPerSecond  int
	CorrectPoints   int
	IncorrectPoints int
	PasswordPoints  int
	LeaderboardSize int
	NicknameMax     int
}

// DefaultRules returns the standard game configuration.
func DefaultRules() Rules {
	return Rules{
		TimeLimit:       90 * time.Second,
		BonusPerSecond:  2,
		CorrectPoints:   20,
		IncorrectPoints: -10,
		PasswordPoints:  100,
		LeaderboardSize: 10,
		NicknameMax:     15,
	}
}

// ContentConfig controls scenario content generation.
type ContentConfig struct {
	Model     string
	APIKeyEnv string
	Timeout   time.Duration
	Offline   bool
	PackPath  string
	Retries   int
}
