package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/storage"
)

// Runs browser layout constants
const (
	minWidthForSidebar = 96  // Minimum width to show the policy sidebar
	sidebarWidth       = 20  // Width of policy sidebar
	maxEpisodes        = 200 // Max episodes to load per tab
)

// allPolicies is the tab that lists every policy's episodes.
const allPolicies = "all"

// RunsKeyMap defines the key bindings for the runs browser.
type RunsKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextPolicy key.Binding
	PrevPolicy key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RunsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextPolicy, k.PrevPolicy, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k RunsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPolicy, k.PrevPolicy},
		{k.Quit},
	}
}

// DefaultRunsKeyMap returns default key bindings.
func DefaultRunsKeyMap() RunsKeyMap {
	return RunsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextPolicy: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next policy"),
		),
		PrevPolicy: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev policy"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RunsModel is the Bubble Tea model for browsing stored episodes.
type RunsModel struct {
	policies []string // Tabs; the first is always allPolicies
	cursor   int
	store    *storage.Store
	episodes []storage.Episode
	stats    *storage.PolicyStats
	err      error
	table    table.Model
	help     help.Model
	keys     RunsKeyMap
	width    int
	height   int
	quitting bool
}

// NewRunsModel creates a runs browser over store.
func NewRunsModel(store *storage.Store, width, height int) RunsModel {
	m := RunsModel{
		policies: policyTabs(store),
		store:    store,
		keys:     DefaultRunsKeyMap(),
		help:     help.New(),
		width:    width,
		height:   height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// policyTabs lists registered policies, the human player and any policy
// that only appears in the store.
func policyTabs(store *storage.Store) []string {
	seen := map[string]bool{HumanPolicyID: true}
	for _, p := range registry.List() {
		seen[p.ID] = true
	}
	if store != nil {
		if all, err := store.GetAllPolicyStats(); err == nil {
			for id := range all {
				seen[id] = true
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return append([]string{allPolicies}, ids...)
}

// Policy returns the selected tab.
func (m RunsModel) Policy() string {
	return m.policies[m.cursor]
}

// Episodes returns the loaded rows.
func (m RunsModel) Episodes() []storage.Episode {
	return m.episodes
}

func (m RunsModel) showSidebar() bool {
	return m.width >= minWidthForSidebar
}

// createTable creates a new table sized to the window.
func (m *RunsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Policy", Width: 12},
		{Title: "Kills", Width: 6},
		{Title: "Time", Width: 6},
		{Title: "Acc", Width: 5},
		{Title: "Reward", Width: 8},
		{Title: "End", Width: 9},
		{Title: "Seed", Width: 20},
		{Title: "Date", Width: 12},
	}

	tableWidth := m.width - 4
	if m.showSidebar() {
		tableWidth -= sidebarWidth + 3
	}
	// Narrow windows lose the date, then the seed. Rows keep all values;
	// the table ignores cells past the last column.
	switch {
	case tableWidth < 70:
		columns = columns[:7]
	case tableWidth < 90:
		columns = columns[:8]
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load fetches episodes and stats for the selected tab.
func (m *RunsModel) load() {
	m.episodes, m.stats, m.err = nil, nil, nil
	if m.store != nil {
		policy := m.Policy()
		filter := policy
		if policy == allPolicies {
			filter = ""
		}
		m.episodes, m.err = m.store.TopEpisodes(filter, maxEpisodes)
		if m.err == nil && policy != allPolicies {
			m.stats, m.err = m.store.GetPolicyStats(policy)
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the loaded episodes.
func (m *RunsModel) updateTableRows() {
	rows := make([]table.Row, len(m.episodes))
	for i, ep := range m.episodes {
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			ep.Policy,
			fmt.Sprintf("%d", ep.Kills),
			clock(ep.Seconds),
			fmt.Sprintf("%.0f%%", ep.Accuracy()*100),
			fmt.Sprintf("%.1f", ep.Reward),
			ep.Outcome,
			fmt.Sprintf("%d", ep.Seed),
			ep.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the runs model.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the runs browser.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextPolicy):
			m.cursor = (m.cursor + 1) % len(m.policies)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.PrevPolicy):
			m.cursor = (m.cursor - 1 + len(m.policies)) % len(m.policies)
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the runs browser.
func (m RunsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(titleStyle.Render(centerText("EPISODES - "+m.Policy(), m.width)))
	b.WriteString("\n")

	summaryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	b.WriteString(summaryStyle.Render(centerText(m.summary(), m.width)))
	b.WriteString("\n\n")

	if m.showSidebar() {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// summary is the one-line aggregate for the selected tab.
func (m RunsModel) summary() string {
	switch {
	case m.err != nil:
		return "error: " + m.err.Error()
	case m.stats != nil && m.stats.Episodes > 0:
		st := m.stats
		return fmt.Sprintf("%d episodes  %d deaths  best %d  mean kills %.1f  mean survival %s  accuracy %.0f%%",
			st.Episodes, st.Deaths, st.BestKills, st.MeanKills, clock(st.MeanSeconds), st.MeanAccuracy*100)
	default:
		return fmt.Sprintf("%d episodes shown", len(m.episodes))
	}
}

// renderWideLayout renders the table with a policy sidebar.
func (m RunsModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Policies\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, id := range m.policies {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + truncate(id, sidebarWidth-6)))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", tableStyle.Render(m.renderTableContent()))
}

// renderNarrowLayout renders policy tabs above the table.
func (m RunsModel) renderNarrowLayout() string {
	var b strings.Builder

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.policies))
	width := 0
	for i, id := range m.policies {
		name := truncate(id, 10)
		if i == m.cursor {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(" " + name + " ")
		}
		width += len(name) + 3
	}

	tabLine := strings.Join(tabs, " ")
	if width > m.width-4 {
		tabLine = fmt.Sprintf("< %s >", m.Policy())
	}
	b.WriteString(centerText(tabLine, m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m RunsModel) renderTableContent() string {
	if len(m.episodes) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No episodes recorded yet.\nRun `lastvector run` or `lastvector play` first.")
	}
	return m.table.View()
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "."
}

// RunRuns runs the episode browser until the user quits.
func RunRuns(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewRunsModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
