// Package tui provides the interactive menu, result reporting and prompts.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/tui/ui"
)

// Menu actions that are not step groups.
const (
	ActionInstallAll = "install-all"
	ActionReset      = "reset-bootstrap"
	ActionQuit       = "quit"
)

// MenuEntry is one numbered line of the menu.
type MenuEntry struct {
	Key         string
	ID          string
	Title       string
	Description string
}

// MenuEntries numbers the groups from 1 and appends install-all, reset and
// quit. Quit is always 0.
func MenuEntries(groups []provision.Group) []MenuEntry {
	caser := cases.Title(language.English)
	entries := make([]MenuEntry, 0, len(groups)+3)
	for i, g := range groups {
		entries = append(entries, MenuEntry{
			Key:         strconv.Itoa(i + 1),
			ID:          g.ID,
			Title:       caser.String(g.Title),
			Description: g.Description,
		})
	}
	n := len(groups)
	entries = append(entries,
		MenuEntry{Key: strconv.Itoa(n + 1), ID: ActionInstallAll, Title: "Install All",
			Description: "Run every group in order and summarize the failures"},
		MenuEntry{Key: strconv.Itoa(n + 2), ID: ActionReset, Title: "Reset First-Run Marker",
			Description: "Run the baseline setup again on the next start"},
		MenuEntry{Key: "0", ID: ActionQuit, Title: "Quit"},
	)
	return entries
}

// MenuModel is a numbered menu. It quits as soon as an entry is chosen.
type MenuModel struct {
	title      string
	status     string
	entries    []MenuEntry
	cursor     int
	chosen     *MenuEntry
	showDetail bool
	keys       ui.KeyMap
	styles     ui.Styles
}

// NewMenuModel creates a menu with the given entries.
func NewMenuModel(title string, entries []MenuEntry) MenuModel {
	return MenuModel{
		title:   title,
		entries: entries,
		keys:    ui.DefaultKeyMap(),
		styles:  ui.DefaultStyles(),
	}
}

// WithStatus sets a line shown under the title, e.g. the last result.
func (m MenuModel) WithStatus(status string) MenuModel {
	m.status = status
	return m
}

// WithStyles replaces the styles.
func (m MenuModel) WithStyles(styles ui.Styles) MenuModel {
	m.styles = styles
	return m
}

// Choice returns the chosen entry once the menu has quit.
func (m MenuModel) Choice() (MenuEntry, bool) {
	if m.chosen == nil {
		return MenuEntry{}, false
	}
	return *m.chosen, true
}

// Cursor returns the highlighted index.
func (m MenuModel) Cursor() int {
	return m.cursor
}

// Init implements tea.Model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m.choose(m.find(ActionQuit))
	case key.Matches(keyMsg, m.keys.Pick):
		for i, e := range m.entries {
			if e.Key == keyMsg.String() {
				return m.choose(i)
			}
		}
	case m.keys.IsUp(keyMsg):
		if m.cursor > 0 {
			m.cursor--
		}
	case m.keys.IsDown(keyMsg):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Select):
		return m.choose(m.cursor)
	case key.Matches(keyMsg, m.keys.Help):
		m.showDetail = !m.showDetail
	}
	return m, nil
}

func (m MenuModel) choose(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.entries) {
		return m, tea.Quit
	}
	entry := m.entries[i]
	m.cursor = i
	m.chosen = &entry
	return m, tea.Quit
}

func (m MenuModel) find(id string) int {
	for i, e := range m.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// View implements tea.Model.
func (m MenuModel) View() string {
	if m.chosen != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.Subtitle.Render(m.status))
		b.WriteString("\n\n")
	}

	for i, e := range m.entries {
		line := fmt.Sprintf("%s %s", m.styles.MenuKey.Render(e.Key+")"), e.Title)
		if i == m.cursor {
			b.WriteString(m.styles.MenuItemActive.Render("> " + line))
		} else {
			b.WriteString(m.styles.MenuItem.Render("  " + line))
		}
		b.WriteString("\n")
		if m.showDetail && i == m.cursor && e.Description != "" {
			b.WriteString(m.styles.MenuDetail.Render(e.Description))
			b.WriteString("\n")
		}
	}

	help := make([]string, 0, len(m.keys.ShortHelp()))
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		help = append(help, m.styles.HelpKey.Render(h.Key)+" "+h.Desc)
	}
	b.WriteString(m.styles.Help.Render(strings.Join(help, "  ")))
	return m.styles.App.Render(b.String())
}
