// Package ui is the interactive terminal browser for dashboard tables.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/dashkit/internal/dashboard"
	"github.com/KaramelBytes/dashkit/internal/session"
	"github.com/KaramelBytes/dashkit/internal/table"
)

var (
	borderColor   = lipgloss.Color("240")
	selectedColor = lipgloss.Color("39")
	labelStyle    = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor).Padding(0, 1)
)

// Options describes how rows of the browsed table are shown.
type Options struct {
	Title string
	// ItemTitle and ItemDesc render a row in the list.
	ItemTitle func(table.Record) string
	ItemDesc  func(table.Record) string
	// Details renders the selected row in the side pane.
	Details func(table.Record) []dashboard.Detail
}

type item struct {
	row         int
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

type keyMap struct {
	Select key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show details"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc", "c"),
		key.WithHelp("esc", "clear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the bubbletea model of the browser. Selection lives in the
// session, so the caller can read it back after the program exits.
type Model struct {
	sess *session.Session
	opt  Options
	list list.Model
	err  error

	width, height int
}

// NewModel shows t in sess and lists its rows.
func NewModel(sess *session.Session, t *table.Table, opt Options) *Model {
	if opt.ItemTitle == nil {
		opt.ItemTitle = func(r table.Record) string { return firstText(r) }
	}
	if opt.ItemDesc == nil {
		opt.ItemDesc = func(table.Record) string { return "" }
	}
	if opt.Details == nil {
		opt.Details = allFields
	}
	sess.Show(t)

	items := make([]list.Item, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rec, _ := t.Row(i)
		items = append(items, item{row: i, title: opt.ItemTitle(rec), desc: opt.ItemDesc(rec)})
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(selectedColor).BorderForeground(selectedColor)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle
	l := list.New(items, d, 40, 20)
	l.Title = opt.Title
	l.SetShowHelp(false)
	l.Styles.NoItems = l.Styles.NoItems.Padding(0, 2)
	return &Model{sess: sess, opt: opt, list: l}
}

// Run starts the browser full screen and blocks until the user quits.
func Run(m *Model) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return m.err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(max(20, msg.Width/2), max(5, msg.Height-2))
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Select):
			m.selectCurrent()
			return m, nil
		case key.Matches(msg, keys.Clear):
			m.sess.Clear()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) selectCurrent() {
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return
	}
	_, m.err = m.sess.Select(it.row)
}

func (m *Model) View() string {
	left := m.list.View()
	right := m.detailView()
	hint := hintStyle.Render(fmt.Sprintf("%s • %s • %s • / filter",
		keys.Select.Help().Key+" "+keys.Select.Help().Desc,
		keys.Clear.Help().Key+" "+keys.Clear.Help().Desc,
		keys.Quit.Help().Key+" "+keys.Quit.Help().Desc))
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, left, right), hint)
}

func (m *Model) detailView() string {
	rec, ok := m.sess.CurrentSelection()
	if !ok {
		return paneStyle.Render(hintStyle.Render("Select a row to see its details."))
	}
	return paneStyle.Width(max(20, m.width/2-4)).Render(RenderDetails(m.opt.Details(rec)))
}

// RenderDetails formats labelled fields one per line.
func RenderDetails(ds []dashboard.Detail) string {
	var b strings.Builder
	for i, d := range ds {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(d.Label + ":"))
		b.WriteString(" ")
		b.WriteString(d.Value)
	}
	return b.String()
}

func firstText(r table.Record) string {
	for _, v := range r.Values() {
		if !v.IsNull() {
			return v.Text()
		}
	}
	return "(empty row)"
}

func allFields(r table.Record) []dashboard.Detail {
	cols := r.Columns()
	vals := r.Values()
	out := make([]dashboard.Detail, len(cols))
	for i, c := range cols {
		out[i] = dashboard.Detail{Label: c, Value: vals[i].Text()}
	}
	return out
}
