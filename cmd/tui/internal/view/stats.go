package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
)

var (
	statsLabelStyle = lipgloss.NewStyle().Width(22)
	statsCountStyle = lipgloss.NewStyle().Width(6).Align(lipgloss.Right).Foreground(lipgloss.Color("205"))
	statsBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

const statsBarWidth = 30

type StatsModel struct {
	CommonModel
	txService *transaction.Service

	stats   *transaction.Stats
	loading bool
	err     error
}

func NewStatsModel(txSvc *transaction.Service) StatsModel {
	return StatsModel{
		txService: txSvc,
		loading:   true,
	}
}

func (m StatsModel) Title() string     { return "Stats" }
func (m StatsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m StatsModel) Init() tea.Cmd {
	return m.loadStatsCmd()
}

func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadStatsMsg:
		m.loading = false
		m.stats, m.err = msg.stats, msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadStatsCmd()
		}
	}

	return m, nil
}

func (m StatsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading stats...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total transactions: %s\n\n", activeStyle(fmt.Sprint(m.stats.Total)))

	for _, s := range transaction.Statuses {
		count := m.stats.ByStatus[s]

		bar := ""
		if m.stats.Total > 0 {
			bar = strings.Repeat("█", count*statsBarWidth/m.stats.Total)
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			statsLabelStyle.Render(FormatStatus(s)),
			statsCountStyle.Render(fmt.Sprint(count)),
			"  ",
			statsBarStyle.Render(bar),
		))
		b.WriteString("\n")
	}

	b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

type loadStatsMsg struct {
	stats *transaction.Stats
	err   error
}

func (m StatsModel) loadStatsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stats, err := m.txService.Stats(ctx)
		return loadStatsMsg{stats: stats, err: err}
	}
}
