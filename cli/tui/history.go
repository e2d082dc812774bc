package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/filebridge/storage"
)

// HistoryModel lists ledger records for one endpoint, newest first.
type HistoryModel struct {
	records  []storage.Record
	table    table.Model
	quitting bool
}

// NewHistoryModel builds the history view from a []storage.Record.
func NewHistoryModel(data any) (HistoryModel, error) {
	recs, ok := data.([]storage.Record)
	if !ok {
		return HistoryModel{}, fmt.Errorf("history view: unexpected data type %T", data)
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Started", Width: 22},
			{Title: "Day", Width: 8},
			{Title: "Trigger", Width: 9},
			{Title: "Status", Width: 8},
			{Title: "Records", Width: 8},
			{Title: "Bytes", Width: 10},
			{Title: "Error", Width: 36},
		}),
		table.WithRows(HistoryRows(recs)),
		table.WithFocused(true),
		table.WithHeight(min(len(recs), 15)+1),
	)
	t.SetStyles(tableStyles())
	return HistoryModel{records: recs, table: t}, nil
}

// HistoryRows converts records to table rows.
func HistoryRows(recs []storage.Record) []table.Row {
	rows := make([]table.Row, 0, len(recs))
	for _, r := range recs {
		errText := r.ErrorKind
		if r.Error != "" {
			errText = r.ErrorKind + ": " + r.Error
		}
		rows = append(rows, table.Row{
			r.StartedAt,
			r.Day,
			r.Trigger,
			r.Status,
			strconv.Itoa(r.Records),
			strconv.FormatInt(r.SizeBytes, 10),
			errText,
		})
	}
	return rows
}

// Init implements tea.Model.
func (m HistoryModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := "Processing History"
	if len(m.records) > 0 {
		title += " " + m.records[0].Endpoint
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.records) == 0 {
		b.WriteString(ValueStyle.Render("(no runs recorded)"))
	} else {
		failed := 0
		for _, r := range m.records {
			if r.Status == storage.StatusFailed {
				failed++
			}
		}
		b.WriteString(fmt.Sprintf("%s %s  %s %s\n\n",
			LabelStyle.Render("Runs:"), ValueStyle.Render(strconv.Itoa(len(m.records))),
			LabelStyle.Render("Failed:"), StateStyle(failedState(failed)).Render(strconv.Itoa(failed))))
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ to scroll, q to quit"))
	return b.String()
}

func failedState(n int) string {
	if n > 0 {
		return "failed"
	}
	return "success"
}
