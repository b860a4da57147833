package preview

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/releasebot/internal/card"
	"github.com/mmcdole/releasebot/internal/domain"
)

func sampleList() domain.ResultList {
	titles := []string{"Dune", "Alien", "Aliens", "Heat"}
	items := make([]domain.Record, len(titles))
	for i, title := range titles {
		items[i] = domain.Record{
			Candidate: domain.Candidate{ID: int64(i + 1), Kind: domain.KindMovie, Title: title},
			PosterURL: "https://img.test/" + title + ".jpg",
		}
	}
	return domain.ResultList{ID: "list", Caption: "🎬 Сегодня в цифре (фильм):", Items: items}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestPagerNavigation(t *testing.T) {
	m := tea.Model(New(sampleList(), card.NewRenderer(nil), 0))

	m = press(m, "right", "right")
	assert.Equal(t, 2, m.(Model).Index())

	m = press(m, "right", "right", "right")
	assert.Equal(t, 3, m.(Model).Index(), "stops at the last page")

	m = press(m, "g")
	assert.Equal(t, 0, m.(Model).Index())
	m = press(m, "left")
	assert.Equal(t, 0, m.(Model).Index(), "stops at the first page")
}

func TestPagerRendersChatCard(t *testing.T) {
	renderer := card.NewRenderer(nil)
	list := sampleList()
	m := New(list, renderer, 1)

	c, ok := m.Card()
	require.True(t, ok)
	want := renderer.Render(list.Items[1], card.Params{Index: 1, Total: 4, ListID: "list", Prefix: list.Caption})
	assert.Equal(t, want, c)

	view := m.View()
	assert.Contains(t, view, "Alien")
	assert.Contains(t, view, "[2/4]")
}

func TestPagerFilter(t *testing.T) {
	m := tea.Model(New(sampleList(), card.NewRenderer(nil), 0))

	m = press(m, "/", "a", "l", "i")
	pm := m.(Model)
	require.ElementsMatch(t, []int{1, 2}, pm.visible)
	assert.Equal(t, pm.visible[0], pm.Index())

	m = press(m, "enter", "right")
	assert.Equal(t, pm.visible[1], m.(Model).Index(), "navigation stays within matches")
	m = press(m, "right")
	assert.Equal(t, pm.visible[1], m.(Model).Index())

	m = press(m, "esc")
	assert.Len(t, m.(Model).visible, 4)
	assert.Equal(t, 0, m.(Model).Index())
}

func TestPagerFilterWithoutMatches(t *testing.T) {
	m := tea.Model(New(sampleList(), card.NewRenderer(nil), 0))
	m = press(m, "/", "z", "z", "z")

	assert.Equal(t, -1, m.(Model).Index())
	assert.Contains(t, m.View(), "no matching pages")
}

func TestPagerQuit(t *testing.T) {
	m := New(sampleList(), card.NewRenderer(nil), 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
