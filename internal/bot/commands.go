package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mmcdole/releasebot/internal/card"
	"github.com/mmcdole/releasebot/internal/domain"
)

// Start subscribes the chat to daily broadcasts and shows help
func (h *Handler) Start(ctx context.Context, chatID int64, p Presenter) {
	h.safely(ctx, p, "start", msgFetchFailed, func() error {
		added, err := h.store.Subscribe(chatID)
		if err != nil {
			return fmt.Errorf("subscribe %d: %w", chatID, err)
		}
		if added {
			h.logger.Info("chat subscribed", "chat", chatID)
		}
		h.text(ctx, p, msgHelp, nil)
		return nil
	})
}

// Stop unsubscribes the chat
func (h *Handler) Stop(ctx context.Context, chatID int64, p Presenter) {
	h.safely(ctx, p, "stop", msgFetchFailed, func() error {
		removed, err := h.store.Unsubscribe(chatID)
		if err != nil {
			return fmt.Errorf("unsubscribe %d: %w", chatID, err)
		}
		if !removed {
			h.text(ctx, p, msgNotSubscribed, nil)
			return nil
		}
		h.logger.Info("chat unsubscribed", "chat", chatID)
		h.text(ctx, p, msgUnsubscribed, nil)
		return nil
	})
}

// Help lists the commands
func (h *Handler) Help(ctx context.Context, p Presenter) {
	h.text(ctx, p, msgHelp, nil)
}

// Releases shows today's releases of a kind
func (h *Handler) Releases(ctx context.Context, kind domain.MediaKind, p Presenter) {
	h.safely(ctx, p, "releases", msgFetchFailed, func() error {
		h.text(ctx, p, progressToday[kind], nil)

		c, ok, err := h.Digest(ctx, kind)
		if err != nil {
			return err
		}
		if !ok {
			h.text(ctx, p, emptyToday[kind], nil)
			return nil
		}
		h.card(ctx, p, c)
		return nil
	})
}

// Digest builds the first card of today's releases of a kind.
// ok is false when nothing was released.
func (h *Handler) Digest(ctx context.Context, kind domain.MediaKind) (c card.Card, ok bool, err error) {
	records, err := h.finder.TodayReleases(ctx, kind, h.opts.TodayLimit)
	if err != nil {
		return card.Card{}, false, err
	}
	if len(records) == 0 {
		return card.Card{}, false, nil
	}
	c, err = h.publish(prefixToday[kind], records)
	if err != nil {
		return card.Card{}, false, err
	}
	return c, true, nil
}

// Next shows the nearest upcoming release day of a kind
func (h *Handler) Next(ctx context.Context, kind domain.MediaKind, p Presenter) {
	h.safely(ctx, p, "next", msgFetchFailed, func() error {
		h.text(ctx, p, progressNext[kind], nil)

		records, day, err := h.finder.NextReleases(ctx, kind, h.opts.NextLimit, h.opts.HorizonDays)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			h.text(ctx, p, fmt.Sprintf(emptyNext[kind], h.opts.HorizonDays), nil)
			return nil
		}

		c, err := h.publish(nextPrefix(kind, day), records)
		if err != nil {
			return err
		}
		h.card(ctx, p, c)
		return nil
	})
}

// Year shows movies that premiered on today's calendar day in a past year.
// args is the raw command argument text.
func (h *Handler) Year(ctx context.Context, args string, p Presenter) {
	h.safely(ctx, p, "year", msgFetchFailed, func() error {
		fields := strings.Fields(args)
		if len(fields) == 0 {
			h.text(ctx, p, msgYearUsage, nil)
			return nil
		}

		today := h.finder.Today()
		year, err := strconv.Atoi(fields[0])
		if err != nil || year < h.opts.MinYear || year > today.Year() {
			h.text(ctx, p, msgYearInvalid, nil)
			return nil
		}

		h.text(ctx, p, yearProgress(h.opts.HistoryLimit, year), nil)
		records, err := h.finder.HistoricalReleases(ctx, domain.KindMovie, year, today.Month(), today.Day(), h.opts.HistoryLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			h.text(ctx, p, yearEmpty(year), nil)
			return nil
		}

		c, err := h.publish(yearPrefix(year), records)
		if err != nil {
			return err
		}
		h.card(ctx, p, c)
		return nil
	})
}

// RandomMenu shows the genre chooser of a kind
func (h *Handler) RandomMenu(ctx context.Context, kind domain.MediaKind, p Presenter) {
	h.safely(ctx, p, "random_menu", msgFetchFailed, func() error {
		index := h.genres.Index()
		if !index.Loaded(kind) {
			h.text(ctx, p, genresNotLoaded[kind], nil)
			return nil
		}

		names := h.opts.SeriesGenres
		if kind == domain.KindMovie {
			names = h.opts.MovieGenres
		}

		choices := make([]card.Choice, 0, len(names))
		seen := make(map[int]bool, len(names))
		for _, name := range names {
			id, ok := index.Lookup(kind, name)
			if !ok || seen[id] {
				h.logger.Debug("chooser genre skipped", "kind", kind, "name", name)
				continue
			}
			seen[id] = true
			display, _ := index.Name(kind, id)
			choices = append(choices, card.Choice{Name: capitalize(display), ID: id})
		}

		h.text(ctx, p, chooserPrompt[kind], card.Chooser(kind, choices, kind == domain.KindMovie))
		return nil
	})
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
