// Package tui implements the interactive skill selection screen. The
// selection state is keyed by skill name and seeded from the current
// installation status; applying diffs the selection against that snapshot
// and nothing touches the filesystem until then. Cancelling quits with
// zero mutations no matter how many toggles were made.
package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/skillctl/skillctl/pkg/skills"
)

// Change is one install or uninstall the user selected
type Change struct {
	Skill   skills.Skill
	Install bool // true = install, false = uninstall
}

type row struct {
	skill    skills.Skill
	original bool // installed when the screen opened
	selected bool
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	All    key.Binding
	None   key.Binding
	Apply  key.Binding
	Cancel key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.None, k.Apply, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.All, k.None, k.Apply, k.Cancel},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		None: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "select none"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

// Model is the bubbletea model for the selection screen
type Model struct {
	rows    []row
	cursor  int
	applied bool
	keys    keyMap
	help    help.Model

	titleStyle    lipgloss.Style
	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	descStyle     lipgloss.Style
	statusStyle   lipgloss.Style
}

// NewModel creates the selection screen. installed records which skills
// are currently installed by this repository; it seeds both the selection
// and the snapshot the final diff is computed against.
func NewModel(list []skills.Skill, installed map[string]bool) Model {
	rows := make([]row, 0, len(list))
	for _, skill := range list {
		rows = append(rows, row{
			skill:    skill,
			original: installed[skill.Name],
			selected: installed[skill.Name],
		})
	}

	return Model{
		rows: rows,
		keys: defaultKeyMap(),
		help: help.New(),

		titleStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		descStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		statusStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key input. Unrecognized keys leave the state unchanged.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.applied = false
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Apply):
		m.applied = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Toggle):
		if len(m.rows) > 0 {
			m.rows[m.cursor].selected = !m.rows[m.cursor].selected
		}

	case key.Matches(keyMsg, m.keys.All):
		for i := range m.rows {
			m.rows[i].selected = true
		}

	case key.Matches(keyMsg, m.keys.None):
		for i := range m.rows {
			m.rows[i].selected = false
		}

	default:
		// Digits toggle by displayed 1-based index
		if idx, err := strconv.Atoi(keyMsg.String()); err == nil {
			if idx >= 1 && idx <= len(m.rows) {
				m.rows[idx-1].selected = !m.rows[idx-1].selected
			}
		}
	}

	return m, nil
}

// View renders the selection screen
func (m Model) View() string {
	out := m.titleStyle.Render("Select skills to install") + "\n\n"

	if len(m.rows) == 0 {
		out += m.descStyle.Render("No skills found in the source directory") + "\n"
		return out + "\n" + m.help.View(m.keys)
	}

	for i, r := range m.rows {
		cursor := "  "
		if i == m.cursor {
			cursor = m.cursorStyle.Render("❯ ")
		}

		checkbox := "[ ]"
		name := r.skill.Name
		if r.selected {
			checkbox = m.selectedStyle.Render("[x]")
			name = m.selectedStyle.Render(name)
		}

		line := fmt.Sprintf("%s%2d. %s %s", cursor, i+1, checkbox, name)
		if r.original {
			line += " " + m.statusStyle.Render("(installed)")
		}
		if r.skill.Description != "" {
			line += " " + m.descStyle.Render("— "+r.skill.Description)
		}
		out += line + "\n"
	}

	return out + "\n" + m.help.View(m.keys)
}

// Applied reports whether the user chose to apply the selection
func (m Model) Applied() bool {
	return m.applied
}

// Changes returns the diff between the final selection and the snapshot
// taken when the screen opened. Unchanged rows produce no work, so a
// toggle that was reverted is indistinguishable from no toggle at all.
func (m Model) Changes() []Change {
	var changes []Change
	for _, r := range m.rows {
		if r.selected == r.original {
			continue
		}
		changes = append(changes, Change{Skill: r.skill, Install: r.selected})
	}
	return changes
}

// Run starts the interactive screen and returns the changes the user
// applied. applied is false when the user cancelled; the change list is
// nil in that case.
func Run(list []skills.Skill, installed map[string]bool) (changes []Change, applied bool, err error) {
	p := tea.NewProgram(NewModel(list, installed))

	final, err := p.Run()
	if err != nil {
		return nil, false, errors.Wrap(err, "interactive mode failed")
	}

	m, ok := final.(Model)
	if !ok || !m.Applied() {
		return nil, false, nil
	}

	return m.Changes(), true, nil
}
