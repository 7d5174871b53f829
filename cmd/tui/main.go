package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dealdesk/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/dealdesk/internal/config"
	"github.com/MrJamesThe3rd/dealdesk/internal/database"
	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
	txStore "github.com/MrJamesThe3rd/dealdesk/internal/transaction/store"
)

type model struct {
	txService *transaction.Service
	author    view.Author

	currentView View

	listView  view.ListModel
	statsView view.StatsModel
}

type View int

const (
	ViewMenu  View = 0
	ViewList  View = 1
	ViewStats View = 2
)

func initialModel() model {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	txSvc := transaction.NewService(txStore.New(db))
	author := view.Author{Name: cfg.Desk.User, Email: cfg.Desk.Email}

	return model{
		txService:   txSvc,
		author:      author,
		currentView: ViewMenu,
		listView:    view.NewListModel(txSvc, author),
		statsView:   view.NewStatsModel(txSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService, m.author)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewStats
				m.statsView = view.NewStatsModel(m.txService)

				return m, m.statsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewStats:
		var newModel tea.Model
		newModel, cmd = m.statsView.Update(msg)
		m.statsView = newModel.(view.StatsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Deal Desk\n\n" +
				"1. Pipeline\n" +
				"2. Stats\n\n" +
				"q. Quit",
		)
	case ViewList:
		return m.listView.View()
	case ViewStats:
		return m.statsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
