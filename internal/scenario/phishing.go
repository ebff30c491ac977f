package scenario

import (
	"fmt"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// Triage handles an inbox of possibly malicious email.
type Triage struct {
	queue[model.EmailItem]
}

var _ Engine = (*Triage)(nil)

// NewTriage starts a phishing round over items.
func NewTriage(items []model.EmailItem, scoring Scoring, onDone CompleteFunc) *Triage {
	t := &Triage{}
	t.module = model.ModulePhishing
	t.onDone = onDone
	t.scoring = scoring
	t.items = append([]model.EmailItem(nil), items...)
	t.id = func(e model.EmailItem) string { return e.ID }
	return t
}

// Resolve applies action to the email itemID.
func (t *Triage) Resolve(itemID string, action model.EmailAction) (Outcome, error) {
	switch action {
	case model.ActionDelete, model.ActionReport, model.ActionReply:
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownTarget, action)
	}
	email, err := t.take(itemID)
	if err != nil {
		return Outcome{}, err
	}
	correct := TriageCorrect(email, action)
	out := Outcome{Correct: correct, Message: triageMessage(email, action)}
	out.Delta = t.score(correct)
	return out, nil
}

// TriageCorrect reports whether action is the right handling of email:
// phishing gets reported, legitimate mail gets deleted.
func TriageCorrect(email model.EmailItem, action model.EmailAction) bool {
	if email.IsPhishing {
		return action == model.ActionReport
	}
	return action == model.ActionDelete
}

func triageMessage(email model.EmailItem, action model.EmailAction) string {
	switch {
	case email.IsPhishing && action == model.ActionReport:
		return "Excellent! You spotted and reported the phishing attempt."
	case !email.IsPhishing && action == model.ActionDelete:
		return "Good choice. That email was safe to delete."
	case email.IsPhishing:
		return "Careful! That was phishing. Report it instead of deleting or replying."
	case action == model.ActionReport:
		return "That email was legitimate. Reporting safe mail causes needless alerts."
	default:
		return "Replying is risky, especially to suspicious mail. Delete or report instead."
	}
}
