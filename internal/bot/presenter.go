package bot

import (
	"context"

	"github.com/mmcdole/releasebot/internal/card"
)

// Presenter delivers handler output to a chat. The platform adapter offers
// two variants: one that sends new messages and one that edits the message
// whose control was activated.
type Presenter interface {
	// ShowText delivers an HTML text, with optional controls
	ShowText(ctx context.Context, text string, controls card.Controls) error
	// ShowCard delivers a photo card
	ShowCard(ctx context.Context, c card.Card) error
}
