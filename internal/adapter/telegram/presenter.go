package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/PaulSonOfLars/gotgbot/v2"

	"github.com/mmcdole/releasebot/internal/card"
)

// api is the subset of the Bot API the presenters use
type api interface {
	SendMessage(chatId int64, text string, opts *gotgbot.SendMessageOpts) (*gotgbot.Message, error)
	SendPhoto(chatId int64, photo gotgbot.InputFileOrString, opts *gotgbot.SendPhotoOpts) (*gotgbot.Message, error)
	EditMessageText(text string, opts *gotgbot.EditMessageTextOpts) (*gotgbot.Message, bool, error)
	EditMessageCaption(opts *gotgbot.EditMessageCaptionOpts) (*gotgbot.Message, bool, error)
	EditMessageMedia(media gotgbot.InputMedia, opts *gotgbot.EditMessageMediaOpts) (*gotgbot.Message, bool, error)
	DeleteMessage(chatId int64, messageId int64, opts *gotgbot.DeleteMessageOpts) (bool, error)
}

// SendNew delivers every reply as a new message
type SendNew struct {
	api    api
	chatID int64
}

// NewSendNew creates a presenter that posts to chatID
func NewSendNew(a api, chatID int64) *SendNew {
	return &SendNew{api: a, chatID: chatID}
}

// ShowText implements bot.Presenter
func (p *SendNew) ShowText(ctx context.Context, text string, controls card.Controls) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.api.SendMessage(p.chatID, text, &gotgbot.SendMessageOpts{
		ParseMode:          gotgbot.ParseModeHTML,
		ReplyMarkup:        replyMarkup(controls),
		LinkPreviewOptions: &gotgbot.LinkPreviewOptions{IsDisabled: true},
	})
	return err
}

// ShowCard implements bot.Presenter
func (p *SendNew) ShowCard(ctx context.Context, c card.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.api.SendPhoto(p.chatID, gotgbot.InputFileByURL(c.ImageURL), &gotgbot.SendPhotoOpts{
		Caption:     c.Text,
		ParseMode:   gotgbot.ParseModeHTML,
		ReplyMarkup: replyMarkup(c.Controls),
	})
	return err
}

// EditInPlace replaces the message whose control was activated. A text
// message cannot turn into a photo, so the first card shown over text is
// sent as a new message and the old one is deleted.
type EditInPlace struct {
	api    api
	chatID int64

	mu        sync.Mutex // Protects messageID and hasMedia
	messageID int64
	hasMedia  bool
}

// NewEditInPlace creates a presenter that edits msg
func NewEditInPlace(a api, msg *gotgbot.Message) *EditInPlace {
	return &EditInPlace{
		api:       a,
		chatID:    msg.Chat.Id,
		messageID: msg.MessageId,
		hasMedia:  len(msg.Photo) > 0,
	}
}

// ShowText implements bot.Presenter
func (p *EditInPlace) ShowText(ctx context.Context, text string, controls card.Controls) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.hasMedia {
		_, _, err = p.api.EditMessageCaption(&gotgbot.EditMessageCaptionOpts{
			ChatId:      p.chatID,
			MessageId:   p.messageID,
			Caption:     text,
			ParseMode:   gotgbot.ParseModeHTML,
			ReplyMarkup: MapKeyboard(controls),
		})
	} else {
		_, _, err = p.api.EditMessageText(text, &gotgbot.EditMessageTextOpts{
			ChatId:             p.chatID,
			MessageId:          p.messageID,
			ParseMode:          gotgbot.ParseModeHTML,
			ReplyMarkup:        MapKeyboard(controls),
			LinkPreviewOptions: &gotgbot.LinkPreviewOptions{IsDisabled: true},
		})
	}
	return ignoreNotModified(err)
}

// ShowCard implements bot.Presenter
func (p *EditInPlace) ShowCard(ctx context.Context, c card.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasMedia {
		_, _, err := p.api.EditMessageMedia(gotgbot.InputMediaPhoto{
			Media:     gotgbot.InputFileByURL(c.ImageURL),
			Caption:   c.Text,
			ParseMode: gotgbot.ParseModeHTML,
		}, &gotgbot.EditMessageMediaOpts{
			ChatId:      p.chatID,
			MessageId:   p.messageID,
			ReplyMarkup: MapKeyboard(c.Controls),
		})
		return ignoreNotModified(err)
	}

	sent, err := p.api.SendPhoto(p.chatID, gotgbot.InputFileByURL(c.ImageURL), &gotgbot.SendPhotoOpts{
		Caption:     c.Text,
		ParseMode:   gotgbot.ParseModeHTML,
		ReplyMarkup: replyMarkup(c.Controls),
	})
	if err != nil {
		return err
	}
	old := p.messageID
	p.messageID, p.hasMedia = sent.MessageId, true

	if _, err := p.api.DeleteMessage(p.chatID, old, nil); err != nil {
		return err
	}
	return nil
}

// ignoreNotModified treats re-rendering identical content as success
func ignoreNotModified(err error) error {
	var tgErr *gotgbot.TelegramError
	if errors.As(err, &tgErr) && strings.Contains(tgErr.Description, "message is not modified") {
		return nil
	}
	return err
}
