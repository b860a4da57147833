// Package bot holds the chat-facing behaviour: command handlers and the
// interaction router. It is platform independent; delivery goes through a
// Presenter supplied by the chat adapter.
package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sourcegraph/conc/panics"

	"github.com/mmcdole/releasebot/internal/card"
	"github.com/mmcdole/releasebot/internal/domain"
	"github.com/mmcdole/releasebot/internal/service"
)

// DefaultMinYear is the earliest year accepted by the history command
const DefaultMinYear = 1970

// Options configures a Handler
type Options struct {
	TodayLimit   int
	NextLimit    int
	HistoryLimit int
	HorizonDays  int

	MovieGenres  []string // Chooser genre names, in display order
	SeriesGenres []string

	AnimationGenreName string
	AnimationGenreID   int // Used when the name does not resolve

	MinYear int
}

// Handler answers commands and control activations
type Handler struct {
	finder   *service.Finder
	picker   *service.RandomPicker
	enricher *service.Enricher
	genres   *service.GenreService
	store    domain.Store
	renderer *card.Renderer
	opts     Options
	logger   *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(
	finder *service.Finder,
	picker *service.RandomPicker,
	enricher *service.Enricher,
	genres *service.GenreService,
	store domain.Store,
	opts Options,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinYear == 0 {
		opts.MinYear = DefaultMinYear
	}
	return &Handler{
		finder:   finder,
		picker:   picker,
		enricher: enricher,
		genres:   genres,
		store:    store,
		renderer: card.NewRenderer(genres.Index()),
		opts:     opts,
		logger:   logger,
	}
}

// Renderer returns the card renderer shared with other delivery paths
func (h *Handler) Renderer() *card.Renderer {
	return h.renderer
}

// safely runs fn and turns whatever goes wrong into a reply.
// catalogMsg is shown when the catalog could not be reached.
func (h *Handler) safely(ctx context.Context, p Presenter, op, catalogMsg string, fn func() error) {
	var pc panics.Catcher
	var err error
	pc.Try(func() { err = fn() })

	if r := pc.Recovered(); r != nil {
		h.logger.Error("handler panicked", "op", op, "panic", r.Value, "stack", string(r.Stack))
		h.text(ctx, p, msgUnexpected, nil)
		return
	}
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Debug("handler abandoned", "op", op, "error", err)
	case errors.Is(err, domain.ErrCatalogUnavailable):
		h.logger.Warn("catalog unavailable", "op", op, "error", err)
		h.text(ctx, p, catalogMsg, nil)
	default:
		h.logger.Error("handler failed", "op", op, "error", err)
		h.text(ctx, p, msgUnexpected, nil)
	}
}

// text delivers a text reply; delivery failures are logged and swallowed
func (h *Handler) text(ctx context.Context, p Presenter, text string, controls card.Controls) {
	if err := p.ShowText(ctx, text, controls); err != nil {
		h.logger.Warn("failed to deliver text", "error", err)
	}
}

func (h *Handler) card(ctx context.Context, p Presenter, c card.Card) {
	if err := p.ShowCard(ctx, c); err != nil {
		h.logger.Warn("failed to deliver card", "error", err)
	}
}

// publish stores records as a new list and renders its first page
func (h *Handler) publish(prefix string, records []domain.Record) (card.Card, error) {
	id, err := h.store.CreateList(prefix, records)
	if err != nil {
		return card.Card{}, err
	}
	h.logger.Debug("list created", "id", id, "items", len(records))
	return h.renderer.Render(records[0], card.Params{
		Index:  0,
		Total:  len(records),
		ListID: id,
		Prefix: prefix,
	}), nil
}
