package translate

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/domain"
)

// New creates the synopsis translator from configuration.
// Disabled translation yields a pass-through translator.
func New(cfg *adapter.TranslateConfig, logger *slog.Logger) (domain.Translator, error) {
	if cfg == nil || !cfg.Enabled {
		return Noop{}, nil
	}
	tag, err := language.Parse(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid translation target %q: %w", cfg.Target, err)
	}
	return NewGoogle(cfg.Endpoint, tag, cfg.Timeout, nil, logger), nil
}
