// Package preview pages through a stored result list in the terminal,
// rendering the same cards the chat shows.
package preview

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/releasebot/internal/card"
	"github.com/mmcdole/releasebot/internal/domain"
)

const defaultWidth = 72

// Model is the pager state
type Model struct {
	list     domain.ResultList
	renderer *card.Renderer
	keys     KeyMap
	help     help.Model

	visible []int // Indices into list.Items matching the filter
	cursor  int   // Position within visible

	filtering bool
	filter    textinput.Model

	width int
}

// New creates a pager positioned at start
func New(list domain.ResultList, renderer *card.Renderer, start int) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = FilterPromptStyle

	m := Model{
		list:     list,
		renderer: renderer,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		filter:   ti,
		width:    defaultWidth,
	}
	m.resetVisible()
	if start > 0 && start < len(m.visible) {
		m.cursor = start
	}
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width, 100)
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Next):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.First):
		m.cursor = 0
	case key.Matches(msg, m.keys.Last):
		m.cursor = max(len(m.visible)-1, 0)
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Escape):
		m.filter.SetValue("")
		m.resetVisible()
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.resetVisible()
		return m, nil
	case key.Matches(msg, m.keys.Accept):
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter(m.filter.Value())
	return m, cmd
}

func (m *Model) resetVisible() {
	m.visible = make([]int, len(m.list.Items))
	for i := range m.visible {
		m.visible[i] = i
	}
	m.cursor = 0
}

// applyFilter narrows the visible pages to fuzzy title matches
func (m *Model) applyFilter(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		m.resetVisible()
		return
	}

	titles := make([]string, len(m.list.Items))
	for i, rec := range m.list.Items {
		titles[i] = strings.ToLower(rec.Title)
	}
	matches := fuzzy.Find(strings.ToLower(query), titles)

	m.visible = make([]int, len(matches))
	for i, match := range matches {
		m.visible[i] = match.Index
	}
	m.cursor = 0
}

// Index returns the list position of the page on screen, or -1 when the
// filter matches nothing
func (m Model) Index() int {
	if len(m.visible) == 0 {
		return -1
	}
	return m.visible[m.cursor]
}

// Card renders the page on screen
func (m Model) Card() (card.Card, bool) {
	idx := m.Index()
	if idx < 0 {
		return card.Card{}, false
	}
	return m.renderer.Render(m.list.Items[idx], card.Params{
		Index:  idx,
		Total:  m.list.Len(),
		ListID: m.list.ID,
		Prefix: m.list.Caption,
	}), true
}

// View implements tea.Model
func (m Model) View() string {
	var sections []string

	if c, ok := m.Card(); ok {
		sections = append(sections, RenderCard(c, m.width))
	} else {
		sections = append(sections, ErrorStyle.Render("no matching pages"))
	}

	if m.filtering || m.filter.Value() != "" {
		sections = append(sections, m.filter.View())
	}
	sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RenderCard draws a card as a framed text block
func RenderCard(c card.Card, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	body := lipgloss.NewStyle().Width(width - 4).Render(card.PlainText(c.Text))

	parts := []string{body}
	if c.ImageURL != "" {
		parts = append(parts, "", ImageStyle.Render("🖼  "+c.ImageURL))
	}
	for _, row := range c.Controls {
		buttons := make([]string, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, LinkButtonStyle.Render(b.Label))
				continue
			}
			buttons = append(buttons, ButtonStyle.Render(b.Label))
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	}
	return CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
