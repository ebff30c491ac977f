package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/cyberdefender/internal/model"
	"github.com/verte-zerg/cyberdefender/internal/scenario"
	"github.com/verte-zerg/cyberdefender/internal/session"
)

const urgentSeconds = 10

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	urgentStyle  = badStyle.Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	selectedItem = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	activeCardStyle = cardStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.ctrl.State()
	var body string
	switch st.View {
	case session.ViewWelcome:
		body = m.renderWelcome()
	case session.ViewModuleSelection:
		body = m.renderSelection(st)
	case session.ViewScenario:
		body = m.renderScenario(st)
	case session.ViewModuleComplete:
		body = m.renderComplete(st)
	case session.ViewLeaderboard:
		body = m.renderLeaderboard(st)
	}
	if m.feedback != nil {
		body = m.renderFeedback()
	}
	parts := []string{}
	if header := m.renderHeader(st); header != "" {
		parts = append(parts, header, "")
	}
	parts = append(parts, body)
	if m.notice != "" {
		parts = append(parts, "", accentStyle.Render(m.notice))
	}
	parts = append(parts, "", m.help.ShortHelpView(m.helpBindings(st)))
	content := strings.Join(parts, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader(st session.State) string {
	if st.Session.Nickname == "" {
		return ""
	}
	segments := []string{
		titleStyle.Render(st.Session.Nickname),
		fmt.Sprintf("Score %d", st.Session.Score),
		fmt.Sprintf("Shield %d%%", st.Session.ShieldLevel()),
	}
	if st.View == session.ViewScenario && m.mclock != nil {
		clock := "Time " + formatClock(m.remaining)
		if m.remaining <= urgentSeconds {
			clock = urgentStyle.Render(clock)
		}
		segments = append(segments, clock)
	}
	return headerStyle.Render(strings.Join(segments, "  ·  "))
}

func (m *Model) renderWelcome() string {
	lines := []string{
		titleStyle.Render("Cyber Defender"),
		mutedStyle.Render("Train your security instincts across three short missions."),
		"",
		m.nickname.View(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSelection(st session.State) string {
	cards := make([]string, 0, len(model.Catalog()))
	for i, mod := range model.Catalog() {
		status := mutedStyle.Render("not started")
		if st.Session.HasCompleted(mod.ID) {
			status = goodStyle.Render("✓ complete")
		}
		text := fmt.Sprintf("%d. %s\n%s\n%s", i+1, titleStyle.Render(mod.Title), mutedStyle.Render(mod.Description), status)
		style := cardStyle
		if i == m.selCursor {
			style = activeCardStyle
		}
		cards = append(cards, style.Width(m.cardWidth()).Render(text))
	}
	return titleStyle.Render("Choose a module") + "\n" + lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m *Model) renderScenario(st session.State) string {
	mod, _ := model.LookupModule(st.Session.CurrentModule)
	title := titleStyle.Render(mod.Title)
	if m.loading {
		return title + "\n\n" + m.spinner.View() + " Generating scenario..."
	}
	var body string
	switch {
	case m.docs != nil:
		body = m.renderDocuments()
	case m.mail != nil:
		body = m.renderEmails()
	case m.pass != nil:
		body = m.renderPassword()
	}
	if m.fromFallback {
		title += "  " + mutedStyle.Render("(offline scenario)")
	}
	return title + "\n" + mutedStyle.Render(mod.Description) + "\n\n" + body
}

func (m *Model) renderDocuments() string {
	pending := m.docs.Pending()
	lines := []string{fmt.Sprintf("Points: %d   Remaining: %d", m.docs.Points(), len(pending)), ""}
	width := m.cardWidth() - 4
	for i, doc := range pending {
		line := "  " + truncateLine(doc.Name, width)
		if i == m.itemCursor {
			line = selectedItem.Render("> " + truncateLine(doc.Name, width))
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", "Move the selected document to:")
	for i, s := range model.Sensitivities() {
		lines = append(lines, fmt.Sprintf("  %d  %s (%s)", i+1, s.StorageName(), s))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderEmails() string {
	pending := m.mail.Pending()
	lines := []string{fmt.Sprintf("Points: %d   Inbox: %d", m.mail.Points(), len(pending)), ""}
	width := m.cardWidth() - 4
	for i, email := range pending {
		head := truncateLine(fmt.Sprintf("%s  %s", email.Sender, email.Subject), width)
		if i != m.itemCursor {
			lines = append(lines, "  "+mutedStyle.Render(head))
			continue
		}
		lines = append(lines, selectedItem.Render("> "+head))
		for _, l := range wrapWords(email.BodyPreview, width) {
			lines = append(lines, "    "+l)
		}
	}
	lines = append(lines, "", "Action for the selected email:")
	for i, a := range model.EmailActions() {
		lines = append(lines, fmt.Sprintf("  %d  %s", i+1, a))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPassword() string {
	crit := m.pass.Criteria()
	check := func(ok bool, label string) string {
		if ok {
			return goodStyle.Render("✓ " + label)
		}
		return mutedStyle.Render("✗ " + label)
	}
	lines := []string{
		m.password.View(),
		"",
		"Strength " + m.strength.View() + " " + strconv.Itoa(m.pass.Strength()) + "%",
		"",
		check(crit.Length, fmt.Sprintf("At least %d characters", scenario.MinPasswordLength)),
		check(crit.Uppercase, "An uppercase letter"),
		check(crit.Lowercase, "A lowercase letter"),
		check(crit.Digit, "A number"),
		check(crit.Symbol, "A symbol"),
	}
	if m.pass.CanSubmit() {
		lines = append(lines, "", goodStyle.Render("Press enter to submit"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFeedback() string {
	out := m.feedback
	heading := goodStyle.Render("Correct")
	if !out.Correct {
		heading = badStyle.Render("Incorrect")
	}
	delta := fmt.Sprintf("%+d points", out.Delta)
	text := strings.Join(wrapWords(out.Message, m.cardWidth()-6), "\n")
	return modalStyle.Render(heading + "  " + mutedStyle.Render(delta) + "\n\n" + text)
}

func (m *Model) renderComplete(st session.State) string {
	title := "Module Complete!"
	next := "Choose Next Module"
	if st.Session.IsComplete {
		title = "Training Complete!"
		next = "View Leaderboard"
	}
	lines := []string{titleStyle.Render(title), ""}
	if st.LastRun != nil {
		lines = append(lines, fmt.Sprintf("Module Score: %d + Time Bonus: %d", st.LastRun.Points, st.LastRun.TimeBonus))
	}
	lines = append(lines, fmt.Sprintf("Total Score: %d", st.Session.Score))
	if st.LastRun != nil {
		if tips := m.moduleTips(st.LastRun.Module); tips != "" {
			lines = append(lines, tips)
		}
	}
	lines = append(lines, accentStyle.Render("[enter] "+next))
	return strings.Join(lines, "\n")
}

func (m *Model) renderLeaderboard(st session.State) string {
	lines := []string{titleStyle.Render("Leaderboard"), ""}
	if len(m.entries) == 0 {
		lines = append(lines, mutedStyle.Render("No scores yet. Be the first!"))
	} else {
		lines = append(lines, m.leaderboard.View())
	}
	if st.Session.IsComplete {
		lines = append(lines, "", fmt.Sprintf("Your final score: %d", st.Session.Score))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) helpBindings(st session.State) []key.Binding {
	if m.feedback != nil {
		return []key.Binding{m.keys.Dismiss, m.keys.Quit}
	}
	switch st.View {
	case session.ViewWelcome:
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "leaderboard")),
			m.keys.Quit,
		}
	case session.ViewModuleSelection:
		return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Leaderboard, m.keys.Reset, m.keys.Quit}
	case session.ViewScenario:
		if m.pass != nil {
			return []key.Binding{
				key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
				key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "end module")),
				m.keys.Reset, m.keys.Quit,
			}
		}
		return []key.Binding{
			m.keys.Up, m.keys.Down,
			key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "choose")),
			m.keys.EndEarly, m.keys.Reset, m.keys.Quit,
		}
	case session.ViewModuleComplete:
		return []key.Binding{m.keys.Enter, m.keys.Reset, m.keys.Quit}
	case session.ViewLeaderboard:
		return []key.Binding{m.keys.Back, m.keys.Reset, m.keys.Quit}
	}
	return []key.Binding{m.keys.Quit}
}

func (m *Model) cardWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(30, min(72, m.width-4))
}

func newLeaderboardTable(entries []model.LeaderboardEntry, height int) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Name", Width: 16},
		{Title: "Score", Width: 7},
		{Title: "Date", Width: 10},
	}
	rows := make([]table.Row, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), truncateLine(e.Nickname, 16), strconv.Itoa(e.Score), e.Date})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(max(1, height)),
		table.WithFocused(true),
	)
	t.SetStyles(leaderboardStyles())
	return t
}

func leaderboardStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
