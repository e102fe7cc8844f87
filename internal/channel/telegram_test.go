package channel

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBotAPI struct {
	sendMsg    tgbotapi.Message
	sendErr    error
	sent       []tgbotapi.Chattable
	groupMsgs  []tgbotapi.Message
	groupErr   error
	group      *tgbotapi.MediaGroupConfig
	requestErr error
	requested  []tgbotapi.Chattable
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return f.sendMsg, f.sendErr
}

func (f *fakeBotAPI) SendMediaGroup(c tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	f.group = &c
	return f.groupMsgs, f.groupErr
}

func (f *fakeBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newTestTelegram(f *fakeBotAPI) *Telegram {
	return &Telegram{api: f, chatID: -1001234567890}
}

func TestSendText_HTMLMode(t *testing.T) {
	f := &fakeBotAPI{sendMsg: tgbotapi.Message{MessageID: 42}}
	tg := newTestTelegram(f)

	id, err := tg.SendText(context.Background(), "<b>hi</b>")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	require.Len(t, f.sent, 1)
	msg, ok := f.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "<b>hi</b>", msg.Text)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
}

func TestSendPhoto_CaptionAndMode(t *testing.T) {
	f := &fakeBotAPI{sendMsg: tgbotapi.Message{MessageID: 43}}
	tg := newTestTelegram(f)

	id, err := tg.SendPhoto(context.Background(), "https://img/1.jpg", "cap")
	require.NoError(t, err)
	assert.Equal(t, 43, id)

	require.Len(t, f.sent, 1)
	photo, ok := f.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, "cap", photo.Caption)
	assert.Equal(t, tgbotapi.ModeHTML, photo.ParseMode)
}

func TestSendPhotoGroup_CaptionOnFirstOnly(t *testing.T) {
	f := &fakeBotAPI{groupMsgs: []tgbotapi.Message{{MessageID: 1}, {MessageID: 2}, {MessageID: 3}}}
	tg := newTestTelegram(f)

	ids, err := tg.SendPhotoGroup(context.Background(), []string{"u1", "u2", "u3"}, "cap")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)

	require.NotNil(t, f.group)
	require.Len(t, f.group.Media, 3)

	first, ok := f.group.Media[0].(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Equal(t, "cap", first.Caption)
	assert.Equal(t, tgbotapi.ModeHTML, first.ParseMode)

	second, ok := f.group.Media[1].(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Empty(t, second.Caption)
}

func TestThrottleTranslation(t *testing.T) {
	f := &fakeBotAPI{sendErr: &tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests: retry after 9",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 9},
	}}
	tg := newTestTelegram(f)

	_, err := tg.SendText(context.Background(), "x")
	te, ok := AsThrottled(err)
	require.True(t, ok)
	assert.Equal(t, 9*time.Second, te.Wait)
}

func TestDeleteMessage_AlreadyGone(t *testing.T) {
	f := &fakeBotAPI{requestErr: &tgbotapi.Error{
		Code:    400,
		Message: "Bad Request: message to delete not found",
	}}
	tg := newTestTelegram(f)

	err := tg.DeleteMessage(context.Background(), 7)
	assert.ErrorIs(t, err, ErrAlreadyGone)
}

func TestDeleteMessage_OtherErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	f := &fakeBotAPI{requestErr: boom}
	tg := newTestTelegram(f)

	err := tg.DeleteMessage(context.Background(), 7)
	assert.ErrorIs(t, err, boom)
}

func TestContextCancelShortCircuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeBotAPI{}
	tg := newTestTelegram(f)

	_, err := tg.SendText(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.sent)
}
