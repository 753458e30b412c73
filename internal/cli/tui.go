package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/isaflow/isaflow/pkg/script"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// SectionListModel is the bubbletea model for interactive section selection.
// Each row shows the section subtitle and its operation count; selecting one
// restricts the render to that section.
type SectionListModel struct {
	Sections []script.Section
	Cursor   int
	Selected *script.Section
}

// NewSectionListModel creates a new section list model.
func NewSectionListModel(sections []script.Section) SectionListModel {
	return SectionListModel{Sections: sections}
}

func (m SectionListModel) Init() tea.Cmd {
	return nil
}

func (m SectionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Sections)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &m.Sections[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SectionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Section"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, sec := range m.Sections {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		subtitle := sec.Subtitle
		if subtitle == "" {
			subtitle = fmt.Sprintf("(section %d)", i+1)
		}

		line := fmt.Sprintf("%s%-30s  %s", cursor, subtitle,
			listDimStyle.Render(fmt.Sprintf("%d ops", len(sec.Ops))))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Sections))))

	return b.String()
}

// pickSection runs the interactive section picker and returns the chosen
// section, or nil if the user quit without selecting.
func pickSection(scr *script.Script) (*script.Section, error) {
	if len(scr.Sections) == 1 {
		return &scr.Sections[0], nil
	}

	model, err := tea.NewProgram(NewSectionListModel(scr.Sections)).Run()
	if err != nil {
		return nil, fmt.Errorf("run section picker: %w", err)
	}
	final, ok := model.(SectionListModel)
	if !ok {
		return nil, fmt.Errorf("unexpected picker model %T", model)
	}
	return final.Selected, nil
}
