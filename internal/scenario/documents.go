package scenario

import (
	"fmt"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// Classification sorts documents into sensitivity storage.
type Classification struct {
	queue[model.DocumentItem]
}

var _ Engine = (*Classification)(nil)

// NewClassification starts a document round over items.
func NewClassification(items []model.DocumentItem, scoring Scoring, onDone CompleteFunc) *Classification {
	c := &Classification{}
	c.module = model.ModuleDocuments
	c.onDone = onDone
	c.scoring = scoring
	c.items = append([]model.DocumentItem(nil), items...)
	c.id = func(d model.DocumentItem) string { return d.ID }
	return c
}

// Resolve files the document itemID into dest.
func (c *Classification) Resolve(itemID string, dest model.Sensitivity) (Outcome, error) {
	if !dest.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownTarget, dest)
	}
	doc, err := c.take(itemID)
	if err != nil {
		return Outcome{}, err
	}
	correct := ClassifyCorrect(doc, dest)
	out := Outcome{Correct: correct}
	if correct {
		out.Message = fmt.Sprintf("Correct! %q was classified properly.", doc.Name)
	} else {
		out.Message = fmt.Sprintf("Not quite. %q belongs in %s (%s).", doc.Name, doc.Sensitivity.StorageName(), doc.Sensitivity)
	}
	out.Delta = c.score(correct)
	return out, nil
}

// ClassifyCorrect reports whether dest is the right storage for doc.
func ClassifyCorrect(doc model.DocumentItem, dest model.Sensitivity) bool {
	return doc.Sensitivity == dest
}
