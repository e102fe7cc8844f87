package channel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot APIのうち使う操作だけ（テストで差し替えるため）
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(c tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Telegram はBot API経由のTransport実装。
type Telegram struct {
	api    botAPI
	chatID int64
}

// NewTelegram はトークンでBot APIに接続し、チャンネルIDを解決する。
// channelは数値のchat_idか「@チャンネル名」。
func NewTelegram(token, channel string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	chatID, err := resolveChat(bot, channel)
	if err != nil {
		return nil, err
	}

	return &Telegram{api: bot, chatID: chatID}, nil
}

func resolveChat(bot *tgbotapi.BotAPI, channel string) (int64, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return 0, fmt.Errorf("channel id is empty")
	}

	// @名前は起動時に一度だけ数値IDへ解決しておく
	if strings.HasPrefix(channel, "@") {
		chat, err := bot.GetChat(tgbotapi.ChatInfoConfig{
			ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: channel},
		})
		if err != nil {
			return 0, fmt.Errorf("resolve channel %s: %w", channel, err)
		}
		return chat.ID, nil
	}

	id, err := strconv.ParseInt(channel, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid channel id %q: %w", channel, err)
	}
	return id, nil
}

func (t *Telegram) SendText(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, translate(err)
	}
	return sent.MessageID, nil
}

func (t *Telegram) SendPhoto(ctx context.Context, imageURL, caption string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FileURL(imageURL))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML

	sent, err := t.api.Send(photo)
	if err != nil {
		return 0, translate(err)
	}
	return sent.MessageID, nil
}

func (t *Telegram) SendPhotoGroup(ctx context.Context, imageURLs []string, caption string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	media := make([]interface{}, 0, len(imageURLs))
	for i, u := range imageURLs {
		m := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(u))
		if i == 0 {
			m.Caption = caption
			m.ParseMode = tgbotapi.ModeHTML
		}
		media = append(media, m)
	}

	sent, err := t.api.SendMediaGroup(tgbotapi.NewMediaGroup(t.chatID, media))
	if err != nil {
		return nil, translate(err)
	}

	ids := make([]int, 0, len(sent))
	for _, m := range sent {
		ids = append(ids, m.MessageID)
	}
	return ids, nil
}

func (t *Telegram) DeleteMessage(ctx context.Context, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(t.chatID, messageID))
	if err != nil {
		return translate(err)
	}
	return nil
}

// translate はBot APIのエラーをこの層のエラー分類に変換する。
func translate(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	if apiErr.RetryAfter > 0 {
		return &ThrottledError{Wait: time.Duration(apiErr.RetryAfter) * time.Second}
	}

	// 削除対象なし・削除不可はBad Requestで返ってくる
	if apiErr.Code == 400 {
		msg := strings.ToLower(apiErr.Message)
		if strings.Contains(msg, "message to delete not found") ||
			strings.Contains(msg, "message can't be deleted") {
			return ErrAlreadyGone
		}
	}

	return err
}
