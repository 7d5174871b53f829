package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

// Author identifies who comments made from the desk are attributed to.
type Author struct {
	Name  string
	Email string
}

type ListModel struct {
	CommonModel
	txService *transaction.Service
	author    Author

	state listState
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form

	// 0 is "all", otherwise an index into transaction.Statuses plus one.
	statusFilterIdx int

	loading bool
	err     error
	status  string

	// Form bindings
	formStatus  transaction.Status
	formComment string
}

func NewListModel(txSvc *transaction.Service, author Author) ListModel {
	columns := []table.Column{
		{Title: "Contract", Width: 12},
		{Title: "Status", Width: 20},
		{Title: "Address", Width: 30},
		{Title: "City", Width: 16},
		{Title: "Coordinator", Width: 18},
		{Title: "Docs", Width: 5},
		{Title: "Feed", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		txService: txSvc,
		author:    author,
		table:     t,
		loading:   true,
	}
}

func (m ListModel) Title() string { return "Pipeline" }
func (m ListModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | e: status/comment | s: status filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.txs = msg.txs
		m.status = ""
		m.refreshTable()
		return m, nil

	case listSaveMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % (len(transaction.Statuses) + 1)
			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return m, nil
	}

	tx := m.txs[idx]
	m.formStatus = tx.Status
	m.formComment = ""

	options := make([]huh.Option[transaction.Status], len(transaction.Statuses))
	for i, s := range transaction.Statuses {
		options[i] = huh.NewOption(FormatStatus(s), s)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Status]().
				Key("status").
				Title("Status").
				Options(options...).
				Value(&m.formStatus),

			huh.NewText().
				Key("comment").
				Title("Add comment").
				Placeholder("Optional").
				Value(&m.formComment),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()
	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	filterLabel := "All"
	if f := m.statusFilter(); f != nil {
		filterLabel = FormatStatus(*f)
	}

	header := fmt.Sprintf("Filter: [s] Status: %s | %d transactions", activeStyle(filterLabel), len(m.txs))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateEdit && m.form != nil {
		idx := m.table.Cursor()
		latest := "No activity yet"
		address := ""
		if idx >= 0 && idx < len(m.txs) {
			address = m.txs[idx].Address
			if acts := m.txs[idx].Activities; len(acts) > 0 {
				latest = fmt.Sprintf("%s: %s", acts[0].User, acts[0].Message)
			}
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("%s\n\nLatest: %s\n\n%s", address, latest, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m ListModel) statusFilter() *transaction.Status {
	if m.statusFilterIdx == 0 {
		return nil
	}

	return new(transaction.Statuses[m.statusFilterIdx-1])
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.ContractDate),
			FormatStatus(tx.Status),
			tx.Address,
			tx.City,
			tx.CoordinatorName,
			strconv.Itoa(len(tx.Documents)),
			strconv.Itoa(len(tx.Activities)),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	status := m.statusFilter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, status)
		return loadListMsg{txs: txs, err: err}
	}
}

type listSaveMsg struct {
	err error
}

func (m ListModel) saveCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	// Read through the form: the bound fields belong to an earlier copy of the model.
	tx := m.txs[idx]
	status, _ := m.form.Get("status").(transaction.Status)
	comment := strings.TrimSpace(m.form.GetString("comment"))
	author := m.author

	if status == "" {
		status = tx.Status
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if status != tx.Status {
			if _, err := m.txService.UpdateStatus(ctx, tx.ID, status); err != nil {
				return listSaveMsg{err: err}
			}
		}

		if comment != "" {
			_, err := m.txService.AddActivity(ctx, tx.ID, transaction.ActivityParams{
				User:      author.Name,
				UserEmail: author.Email,
				Message:   comment,
			})
			if err != nil {
				return listSaveMsg{err: err}
			}
		}

		return listSaveMsg{}
	}
}
