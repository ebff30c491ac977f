package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

// Pack is the static content used when generation is unavailable.
type Pack struct {
	Documents []model.DocumentItem `yaml:"documents"`
	Emails    []model.EmailItem    `yaml:"emails"`
}

// DefaultPack returns the built-in fallback content.
func DefaultPack() Pack {
	return Pack{
		Documents: []model.DocumentItem{
			{ID: "doc-1", Name: "Q3 Financial Report", Sensitivity: model.SensitivityConfidential},
			{ID: "doc-2", Name: "Team Meeting Notes", Sensitivity: model.SensitivityInternal},
			{ID: "doc-3", Name: "Public Press Release", Sensitivity: model.SensitivityPublic},
			{ID: "doc-4", Name: "Employee Handbook", Sensitivity: model.SensitivityInternal},
			{ID: "doc-5", Name: "Client Database Backup", Sensitivity: model.SensitivityConfidential},
		},
		Emails: []model.EmailItem{
			{
				ID:          "email-1",
				Sender:      "IT Helpdesk <support@company.com>",
				Subject:     "Scheduled Maintenance",
				BodyPreview: "We will be performing system maintenance tonight from 11 PM to 2 AM.",
			},
			{
				ID:          "email-2",
				Sender:      "rewards@a-mazon.co",
				Subject:     "You won a prize!",
				BodyPreview: "Click here now to claim your free gift card worth $100! Limited time offer.",
				IsPhishing:  true,
			},
			{
				ID:          "email-3",
				Sender:      "HR Department <hr@company.com>",
				Subject:     "Updated Holiday Policy",
				BodyPreview: "Please review the attached document for the updated company holiday policy for next year.",
			},
			{
				ID:          "email-4",
				Sender:      "CEO <ceo.ofice@companie.net>",
				Subject:     "URGENT: Wire Transfer Request",
				BodyPreview: "I need you to process an urgent wire transfer for a new vendor immediately.",
				IsPhishing:  true,
			},
			{
				ID:          "email-5",
				Sender:      "Your Bank",
				Subject:     "Security Alert: Suspicious Login",
				BodyPreview: "We detected a suspicious login. Click this link to verify your account right away.",
				IsPhishing:  true,
			},
		},
	}
}

// LoadPack reads a YAML pack. Sections left empty keep the built-in content.
func LoadPack(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, fmt.Errorf("failed to read content pack: %w", err)
	}
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return Pack{}, fmt.Errorf("failed to decode content pack: %w", err)
	}
	def := DefaultPack()
	if len(pack.Documents) == 0 {
		pack.Documents = def.Documents
	} else if err := ValidateDocuments(pack.Documents); err != nil {
		return Pack{}, fmt.Errorf("content pack documents: %w", err)
	}
	if len(pack.Emails) == 0 {
		pack.Emails = def.Emails
	} else if err := ValidateEmails(pack.Emails); err != nil {
		return Pack{}, fmt.Errorf("content pack emails: %w", err)
	}
	return pack, nil
}
