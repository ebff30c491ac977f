package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/verte-zerg/cyberdefender/internal/model"
)

var tipsMarkdown = map[model.ModuleID]string{
	model.ModuleDocuments: `### Handling documents
- **Confidential** files such as financials and customer data belong in encrypted storage.
- **Internal** material stays on company systems and never goes to personal accounts.
- Only approved **Public** content should be shared outside the company.`,
	model.ModulePhishing: `### Spotting phishing
- Check the sender domain letter by letter: *a-mazon.co* is not *amazon.com*.
- Urgency, prizes and payment requests are classic pressure tactics.
- Report suspicious mail instead of replying or clicking links.`,
	model.ModulePassword: `### Strong passwords
- Length matters most: aim for 12 characters or more.
- Mix upper and lower case letters, numbers and symbols.
- Use a password manager so every account gets a unique password.`,
}

// moduleTips renders the security tips for id, cached per module and width.
func (m *Model) moduleTips(id model.ModuleID) string {
	src, ok := tipsMarkdown[id]
	if !ok {
		return ""
	}
	width := m.cardWidth()
	if m.tipsModule == id && m.tipsWidth == width && m.tips != "" {
		return m.tips
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.logger.Debug("tips renderer unavailable", zap.Error(err))
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		m.logger.Debug("tips render failed", zap.Error(err))
		return src
	}
	m.tips = strings.TrimRight(out, "\n")
	m.tipsModule = id
	m.tipsWidth = width
	return m.tips
}
