// Package card renders enriched records into chat cards: caption text,
// image reference and the control layout carrying action tokens.
package card

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf16"

	"github.com/mmcdole/releasebot/internal/domain"
)

// MaxCaption is the chat platform's limit for photo captions, in UTF-16 units
const MaxCaption = 1024

// Control labels
const (
	LabelPrev    = "⬅️ Назад"
	LabelNext    = "➡️ Вперед"
	LabelBlank   = " "
	LabelReroll  = "🔄 Повторить"
	LabelTrailer = "🎬 Смотреть трейлер"
)

const (
	maxGenres = 2
	ellipsis  = "…"
)

// Button is a single control. Exactly one of Action and URL is set:
// Action carries an encoded token, URL opens externally.
type Button struct {
	Label  string
	Action string
	URL    string
}

// Controls is a grid of buttons, one slice per row
type Controls [][]Button

// Empty reports whether there is nothing to show
func (c Controls) Empty() bool {
	for _, row := range c {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// Card is everything a presenter needs to deliver one record
type Card struct {
	Text     string // HTML
	ImageURL string
	Controls Controls
}

// GenreNamer resolves genre ids to display names
type GenreNamer interface {
	Name(kind domain.MediaKind, id int) (string, bool)
}

// Params positions a record within its list
type Params struct {
	Index  int
	Total  int
	ListID string
	Prefix string         // Title line prefix, e.g. "🎬 Сегодня в цифре (фильм):"
	Reroll *domain.Action // Adds a reroll control when set
}

// Renderer builds cards. It holds no per-call state, so rendering the
// same inputs twice yields identical cards.
type Renderer struct {
	genres     GenreNamer
	maxCaption int
}

// NewRenderer creates a renderer; genres may be nil
func NewRenderer(genres GenreNamer) *Renderer {
	return &Renderer{genres: genres, maxCaption: MaxCaption}
}

// Render produces the card for rec at position p.Index of p.Total
func (r *Renderer) Render(rec domain.Record, p Params) Card {
	return Card{
		Text:     r.text(rec, p.Prefix),
		ImageURL: rec.PosterURL,
		Controls: r.controls(rec, p),
	}
}

func (r *Renderer) text(rec domain.Record, prefix string) string {
	var head strings.Builder
	if prefix != "" {
		head.WriteString(html.EscapeString(prefix))
		head.WriteString(" ")
	}
	fmt.Fprintf(&head, "<b>%s</b>\n\n", html.EscapeString(rec.Title))

	if rec.Rating > 0 {
		fmt.Fprintf(&head, "⭐ Рейтинг: %.1f/10\n", rec.Rating)
	}
	if rec.Availability != "" {
		fmt.Fprintf(&head, "Статус: %s\n", html.EscapeString(rec.Availability))
	}
	if genres := r.genreLine(rec); genres != "" {
		fmt.Fprintf(&head, "Жанр: %s\n", html.EscapeString(genres))
	}
	head.WriteString("\n")

	header := head.String()
	budget := r.maxCaption - visibleLen(header)
	return header + html.EscapeString(truncate(rec.Overview, budget))
}

// genreLine joins up to two resolvable genre names
func (r *Renderer) genreLine(rec domain.Record) string {
	if r.genres == nil {
		return ""
	}
	names := make([]string, 0, maxGenres)
	for _, id := range rec.GenreIDs {
		name, ok := r.genres.Name(rec.Kind, id)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == maxGenres {
			break
		}
	}
	return strings.Join(names, ", ")
}

func (r *Renderer) controls(rec domain.Record, p Params) Controls {
	var rows Controls

	if p.Total > 1 {
		prev := Button{Label: LabelBlank, Action: domain.NoopAction().Encode()}
		if p.Index > 0 {
			prev = Button{Label: LabelPrev, Action: domain.PageAction(p.ListID, p.Index-1).Encode()}
		}
		next := Button{Label: LabelBlank, Action: domain.NoopAction().Encode()}
		if p.Index < p.Total-1 {
			next = Button{Label: LabelNext, Action: domain.PageAction(p.ListID, p.Index+1).Encode()}
		}
		counter := Button{
			Label:  fmt.Sprintf("[%d/%d]", p.Index+1, p.Total),
			Action: domain.NoopAction().Encode(),
		}
		rows = append(rows, []Button{prev, counter, next})
	}

	var actions []Button
	if p.Reroll != nil {
		actions = append(actions, Button{Label: LabelReroll, Action: p.Reroll.Reroll().Encode()})
	}
	if rec.TrailerURL != "" {
		actions = append(actions, Button{Label: LabelTrailer, URL: rec.TrailerURL})
	}
	if len(actions) > 0 {
		rows = append(rows, actions)
	}
	return rows
}

// visibleLen counts what the platform counts: text without markup, in UTF-16 units
func visibleLen(s string) int {
	return utf16Len(html.UnescapeString(StripTags(s)))
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// truncate shortens s to at most budget UTF-16 units, marking the cut
func truncate(s string, budget int) string {
	if utf16Len(s) <= budget {
		return s
	}
	if budget <= 0 {
		return ""
	}

	limit := budget - utf16Len(ellipsis)
	var sb strings.Builder
	used := 0
	for _, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if used+n > limit {
			break
		}
		sb.WriteRune(r)
		used += n
	}
	return strings.TrimRight(sb.String(), " \n") + ellipsis
}

// StripTags removes HTML tags, leaving entities untouched
func StripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// PlainText converts card text to plain text for terminals and logs
func PlainText(s string) string {
	return html.UnescapeString(StripTags(s))
}
