package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// pickerItem is one selectable row.
type pickerItem struct {
	ID     int
	Title  string
	Detail string
	// Disabled rows are shown dimmed and cannot be chosen.
	Disabled bool
}

// pickerModel is the bubbletea model for choosing one record from a list.
type pickerModel struct {
	title  string
	items  []pickerItem
	cursor int
	offset int
	height int

	chosen *pickerItem
}

func newPicker(title string, items []pickerItem) pickerModel {
	return pickerModel{title: title, items: items, height: 15}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "home", "g":
			m.cursor, m.offset = 0, 0
		case "end", "G":
			m.cursor = max(len(m.items)-1, 0)
			m.offset = max(m.cursor-m.height+1, 0)
		case "enter":
			if len(m.items) == 0 {
				return m, nil
			}
			item := m.items[m.cursor]
			if item.Disabled {
				return m, nil
			}
			m.chosen = &item
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to choose from"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.offset+m.height, len(m.items))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		it := m.items[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, strconv.Itoa(it.ID), it.Title, it.Detail})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.items) {
				return lipgloss.NewStyle()
			}
			it := m.items[idx]
			base := lipgloss.NewStyle()
			if col == 3 {
				base = base.Foreground(colorGray)
			}
			switch {
			case it.Disabled:
				return base.Foreground(colorDim)
			case idx == m.cursor:
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.items))))

	return b.String()
}

// runPicker shows the picker and returns the chosen item, or false when the
// user quit.
func runPicker(title string, items []pickerItem) (pickerItem, bool, error) {
	final, err := tea.NewProgram(newPicker(title, items)).Run()
	if err != nil {
		return pickerItem{}, false, err
	}
	m := final.(pickerModel)
	if m.chosen == nil {
		return pickerItem{}, false, nil
	}
	return *m.chosen, true, nil
}
