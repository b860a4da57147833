package bot

import (
	"context"
	"errors"
	"strconv"

	"github.com/mmcdole/releasebot/internal/card"
	"github.com/mmcdole/releasebot/internal/domain"
)

// HandleAction dispatches a control activation. Tokens that do not decode
// are dropped without a reply. p normally edits the message that carried
// the control.
func (h *Handler) HandleAction(ctx context.Context, token string, p Presenter) {
	a, ok := domain.ParseAction(token)
	if !ok {
		h.logger.Debug("ignoring invalid action", "token", token)
		return
	}

	switch a.Type {
	case domain.ActionNoop:
	case domain.ActionPage:
		h.safely(ctx, p, "page", msgFetchFailed, func() error {
			return h.page(ctx, a, p)
		})
	case domain.ActionRandom, domain.ActionReroll:
		h.safely(ctx, p, "random", msgSearchFailed, func() error {
			return h.random(ctx, a.Random(), p)
		})
	}
}

// page re-renders a stored list at the requested position
func (h *Handler) page(ctx context.Context, a domain.Action, p Presenter) error {
	list, err := h.store.GetList(a.ListID)
	if errors.Is(err, domain.ErrListNotFound) {
		h.logger.Debug("page of unknown list", "list", a.ListID, "index", a.Index)
		h.text(ctx, p, msgStaleList, nil)
		return nil
	}
	if err != nil {
		return err
	}
	if a.Index < 0 || a.Index >= list.Len() {
		h.logger.Debug("page out of range", "list", a.ListID, "index", a.Index, "total", list.Len())
		h.text(ctx, p, msgStaleList, nil)
		return nil
	}

	h.card(ctx, p, h.renderer.Render(list.Items[a.Index], card.Params{
		Index:  a.Index,
		Total:  list.Len(),
		ListID: list.ID,
		Prefix: list.Caption,
	}))
	return nil
}

// random samples one title for a random action. Every call samples afresh,
// so a reroll replays the same action for an independent result.
func (h *Handler) random(ctx context.Context, a domain.Action, p Presenter) error {
	h.text(ctx, p, randomProgress(a.Kind, h.category(a)), nil)

	animationID := h.genres.AnimationID(h.opts.AnimationGenreName, h.opts.AnimationGenreID)
	candidate, ok, err := h.picker.Pick(ctx, a.Kind, h.picker.Filter(a, animationID))
	if errors.Is(err, domain.ErrNoResults) {
		h.text(ctx, p, msgRandomEmpty, nil)
		return nil
	}
	if err != nil {
		return err
	}
	if !ok {
		h.text(ctx, p, msgRandomNoMatch, nil)
		return nil
	}

	rec, err := h.enricher.Enrich(ctx, candidate, "")
	if err != nil {
		return err
	}

	h.card(ctx, p, h.renderer.Render(rec, card.Params{
		Total:  1,
		Prefix: prefixRandom[a.Kind],
		Reroll: &a,
	}))
	return nil
}

// category names the random selection for the progress line
func (h *Handler) category(a domain.Action) string {
	switch a.Selector {
	case domain.SelectCartoon:
		return msgCategoryCartoon
	case domain.SelectAnime:
		return msgCategoryAnime
	}
	if name, ok := h.genres.Index().Name(a.Kind, a.GenreID); ok {
		return capitalize(name)
	}
	return strconv.Itoa(a.GenreID)
}
