package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/filebridge/pipeline"
)

// StatusModel shows today's per-contract file presence.
type StatusModel struct {
	status   *pipeline.Status
	table    table.Model
	quitting bool
}

// NewStatusModel builds the status view from a *pipeline.Status.
func NewStatusModel(data any) (StatusModel, error) {
	st, ok := data.(*pipeline.Status)
	if !ok {
		return StatusModel{}, fmt.Errorf("status view: unexpected data type %T", data)
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Endpoint", Width: 14},
			{Title: "Input", Width: 30},
			{Title: "In", Width: 8},
			{Title: "Output", Width: 32},
			{Title: "Out", Width: 8},
		}),
		table.WithRows(StatusRows(st)),
		table.WithFocused(true),
		table.WithHeight(min(len(st.Contracts), 12)+1),
	)
	t.SetStyles(tableStyles())
	return StatusModel{status: st, table: t}, nil
}

// StatusRows flattens contract states into table rows ordered by endpoint.
func StatusRows(st *pipeline.Status) []table.Row {
	endpoints := make([]string, 0, len(st.Contracts))
	for e := range st.Contracts {
		endpoints = append(endpoints, e)
	}
	sort.Strings(endpoints)

	rows := make([]table.Row, 0, len(endpoints))
	for _, e := range endpoints {
		cs := st.Contracts[e]
		rows = append(rows, table.Row{e, cs.InputExpected, presence(cs.InputExists), cs.OutputExpected, presence(cs.OutputExists)})
	}
	return rows
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}

// Init implements tea.Model.
func (m StatusModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}

	inputs, outputs := 0, 0
	for _, cs := range m.status.Contracts {
		if cs.InputExists {
			inputs++
		}
		if cs.OutputExists {
			outputs++
		}
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Bridge Status " + m.status.Date))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Contracts", len(m.status.Contracts), highlightColor),
		statBox("Inputs ready", inputs, warningColor),
		statBox("Processed", outputs, successColor),
	))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s (%d files)\n", LabelStyle.Render("System A:"), ValueStyle.Render(m.status.Source.Path), m.status.Source.FileCount))
	b.WriteString(fmt.Sprintf("%s %s (%d files)\n\n", LabelStyle.Render("System B:"), ValueStyle.Render(m.status.Target.Path), m.status.Target.FileCount))
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ to scroll, q to quit"))
	return b.String()
}

func itoa(n int) string { return strconv.Itoa(n) }
