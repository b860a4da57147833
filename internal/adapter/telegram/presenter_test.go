package telegram

import (
	"context"
	"testing"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/releasebot/internal/card"
)

// fakeAPI records Bot API calls by method name
type fakeAPI struct {
	calls    []string
	captions []string
	deleted  []int64
	nextID   int64
	editErr  error
}

func (f *fakeAPI) SendMessage(_ int64, text string, _ *gotgbot.SendMessageOpts) (*gotgbot.Message, error) {
	f.calls = append(f.calls, "sendMessage")
	f.captions = append(f.captions, text)
	f.nextID++
	return &gotgbot.Message{MessageId: f.nextID}, nil
}

func (f *fakeAPI) SendPhoto(_ int64, _ gotgbot.InputFileOrString, opts *gotgbot.SendPhotoOpts) (*gotgbot.Message, error) {
	f.calls = append(f.calls, "sendPhoto")
	f.captions = append(f.captions, opts.Caption)
	f.nextID++
	return &gotgbot.Message{MessageId: f.nextID}, nil
}

func (f *fakeAPI) EditMessageText(text string, _ *gotgbot.EditMessageTextOpts) (*gotgbot.Message, bool, error) {
	f.calls = append(f.calls, "editMessageText")
	f.captions = append(f.captions, text)
	return nil, true, f.editErr
}

func (f *fakeAPI) EditMessageCaption(opts *gotgbot.EditMessageCaptionOpts) (*gotgbot.Message, bool, error) {
	f.calls = append(f.calls, "editMessageCaption")
	f.captions = append(f.captions, opts.Caption)
	return nil, true, f.editErr
}

func (f *fakeAPI) EditMessageMedia(_ gotgbot.InputMedia, _ *gotgbot.EditMessageMediaOpts) (*gotgbot.Message, bool, error) {
	f.calls = append(f.calls, "editMessageMedia")
	return nil, true, f.editErr
}

func (f *fakeAPI) DeleteMessage(_ int64, messageID int64, _ *gotgbot.DeleteMessageOpts) (bool, error) {
	f.calls = append(f.calls, "deleteMessage")
	f.deleted = append(f.deleted, messageID)
	return true, nil
}

var sampleCard = card.Card{
	Text:     "<b>Title</b>",
	ImageURL: "https://img.test/p.jpg",
	Controls: card.Controls{{{Label: card.LabelNext, Action: "page:x:1"}}},
}

func TestEditInPlaceReplacesTextWithPhoto(t *testing.T) {
	api := &fakeAPI{nextID: 100}
	p := NewEditInPlace(api, &gotgbot.Message{MessageId: 7, Chat: gotgbot.Chat{Id: 1}})
	ctx := context.Background()

	require.NoError(t, p.ShowText(ctx, "🔍 Подбираю...", nil))
	require.NoError(t, p.ShowCard(ctx, sampleCard))
	require.NoError(t, p.ShowCard(ctx, sampleCard))

	assert.Equal(t, []string{"editMessageText", "sendPhoto", "deleteMessage", "editMessageMedia"}, api.calls)
	assert.Equal(t, []int64{7}, api.deleted)
	assert.Equal(t, int64(101), p.messageID)
}

func TestEditInPlaceOnPhotoEditsCaption(t *testing.T) {
	api := &fakeAPI{}
	p := NewEditInPlace(api, &gotgbot.Message{
		MessageId: 7,
		Chat:      gotgbot.Chat{Id: 1},
		Photo:     []gotgbot.PhotoSize{{FileId: "f"}},
	})

	require.NoError(t, p.ShowText(context.Background(), "stale", nil))
	assert.Equal(t, []string{"editMessageCaption"}, api.calls)
	assert.Equal(t, []string{"stale"}, api.captions)
}

func TestEditInPlaceIgnoresNotModified(t *testing.T) {
	api := &fakeAPI{editErr: &gotgbot.TelegramError{
		Code:        400,
		Description: "Bad Request: message is not modified",
	}}
	p := NewEditInPlace(api, &gotgbot.Message{MessageId: 7, Chat: gotgbot.Chat{Id: 1}})
	assert.NoError(t, p.ShowText(context.Background(), "same", nil))
}

func TestSendNew(t *testing.T) {
	api := &fakeAPI{}
	p := NewSendNew(api, 5)

	require.NoError(t, p.ShowText(context.Background(), "hello", nil))
	require.NoError(t, p.ShowCard(context.Background(), sampleCard))
	assert.Equal(t, []string{"sendMessage", "sendPhoto"}, api.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.ShowText(ctx, "late", nil), context.Canceled)
	assert.Len(t, api.calls, 2)
}

func TestMapKeyboard(t *testing.T) {
	kb := MapKeyboard(card.Controls{
		{{Label: "a", Action: "noop"}, {Label: "b", URL: "https://x.test"}},
		{},
	})
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, gotgbot.InlineKeyboardButton{Text: "a", CallbackData: "noop"}, kb.InlineKeyboard[0][0])
	assert.Equal(t, gotgbot.InlineKeyboardButton{Text: "b", Url: "https://x.test"}, kb.InlineKeyboard[0][1])

	assert.Nil(t, replyMarkup(nil))
	assert.NotNil(t, replyMarkup(card.Controls{{{Label: "a", Action: "noop"}}}))
}
