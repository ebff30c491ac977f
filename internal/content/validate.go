package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// ErrEmpty reports a batch with no items.
var ErrEmpty = errors.New("empty batch")

// ParseDocuments decodes and validates a generated document batch.
func ParseDocuments(raw string) ([]model.DocumentItem, error) {
	var docs []model.DocumentItem
	if err := decodeArray(raw, &docs); err != nil {
		return nil, err
	}
	if err := ValidateDocuments(docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ParseEmails decodes and validates a generated email batch.
func ParseEmails(raw string) ([]model.EmailItem, error) {
	var emails []model.EmailItem
	if err := decodeArray(raw, &emails); err != nil {
		return nil, err
	}
	if err := ValidateEmails(emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// ValidateDocuments checks ids, names and sensitivity levels.
func ValidateDocuments(docs []model.DocumentItem) error {
	if len(docs) == 0 {
		return ErrEmpty
	}
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if err := checkID(seen, d.ID, i); err != nil {
			return err
		}
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("document %q: missing name", d.ID)
		}
		if !d.Sensitivity.Valid() {
			return fmt.Errorf("document %q: unknown sensitivity %q", d.ID, d.Sensitivity)
		}
	}
	return nil
}

// ValidateEmails checks ids, senders and subjects.
func ValidateEmails(emails []model.EmailItem) error {
	if len(emails) == 0 {
		return ErrEmpty
	}
	seen := make(map[string]struct{}, len(emails))
	for i, e := range emails {
		if err := checkID(seen, e.ID, i); err != nil {
			return err
		}
		if strings.TrimSpace(e.Sender) == "" {
			return fmt.Errorf("email %q: missing sender", e.ID)
		}
		if strings.TrimSpace(e.Subject) == "" {
			return fmt.Errorf("email %q: missing subject", e.ID)
		}
	}
	return nil
}

func checkID(seen map[string]struct{}, id string, index int) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("item %d: missing id", index)
	}
	if _, dup := seen[id]; dup {
		return fmt.Errorf("duplicate id %q", id)
	}
	seen[id] = struct{}{}
	return nil
}

func decodeArray(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	// Models occasionally wrap JSON in a markdown fence despite the MIME type.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") {
		return fmt.Errorf("expected a JSON array")
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to decode batch: %w", err)
	}
	return nil
}
