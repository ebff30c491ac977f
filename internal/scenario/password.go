package scenario

import (
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// PasswordSymbols are the characters that satisfy the symbol criterion.
const PasswordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// MinPasswordLength is the length criterion.
const MinPasswordLength = 12

// Criteria are the password rules.
type Criteria struct {
	Length    bool
	Uppercase bool
	Lowercase bool
	Digit     bool
	Symbol    bool
}

// All reports whether every criterion holds.
func (c Criteria) All() bool {
	return c.Length && c.Uppercase && c.Lowercase && c.Digit && c.Symbol
}

// Met counts the satisfied criteria.
func (c Criteria) Met() int {
	n := 0
	for _, ok := range []bool{c.Length, c.Uppercase, c.Lowercase, c.Digit, c.Symbol} {
		if ok {
			n++
		}
	}
	return n
}

// Evaluate checks pw against the criteria. Only ASCII letters and digits count.
func Evaluate(pw string) Criteria {
	c := Criteria{Length: utf8.RuneCountInString(pw) >= MinPasswordLength}
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			c.Uppercase = true
		case r >= 'a' && r <= 'z':
			c.Lowercase = true
		case r >= '0' && r <= '9':
			c.Digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			c.Symbol = true
		}
	}
	return c
}

// Strength is the weighted indicator value in [0, 100]. It does not affect scoring.
func Strength(pw string) int {
	if pw == "" {
		return 0
	}
	c := Evaluate(pw)
	score := 0
	if c.Length {
		score += 25
	}
	if c.Uppercase {
		score += 15
	}
	if c.Lowercase {
		score += 15
	}
	if c.Digit {
		score += 20
	}
	if c.Symbol {
		score += 25
	}
	return min(score, 100)
}

// PasswordStation scores a single password attempt.
type PasswordStation struct {
	completion
	scoring Scoring
	input   string
}

var _ Engine = (*PasswordStation)(nil)

// NewPasswordStation starts a password round.
func NewPasswordStation(scoring Scoring, onDone CompleteFunc) *PasswordStation {
	p := &PasswordStation{scoring: scoring}
	p.module = model.ModulePassword
	p.onDone = onDone
	return p
}

// SetInput replaces the candidate password.
func (p *PasswordStation) SetInput(pw string) {
	if p.reported {
		return
	}
	p.input = pw
}

// Criteria evaluates the current candidate.
func (p *PasswordStation) Criteria() Criteria {
	return Evaluate(p.input)
}

// Strength rates the current candidate.
func (p *PasswordStation) Strength() int {
	return Strength(p.input)
}

// CanSubmit reports whether Submit would succeed.
func (p *PasswordStation) CanSubmit() bool {
	return !p.reported && p.Criteria().All()
}

// Points is zero until a successful submission.
func (p *PasswordStation) Points() int {
	return 0
}

// Submit awards the password points when every criterion holds.
func (p *PasswordStation) Submit() error {
	if p.reported {
		return ErrCompleted
	}
	if !p.Criteria().All() {
		return ErrCriteriaUnmet
	}
	p.report(p.scoring.Password, false)
	return nil
}

// EndEarly gives up the module for zero points.
func (p *PasswordStation) EndEarly() error {
	if p.reported {
		return ErrCompleted
	}
	p.report(0, false)
	return nil
}

// TimeUp reports zero points with TimeUp set.
func (p *PasswordStation) TimeUp() {
	p.report(0, true)
}
