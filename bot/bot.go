package bot

import (
	"context"
	"log"
	"strconv"
	"strings"

	"meal-telegram/config"
	"meal-telegram/dialog"
	"meal-telegram/lang"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// callbackDataMax is Telegram's limit on inline button callback data.
const callbackDataMax = 64

const buttonsPerRow = 3

// Handler answers one chat event with one reply.
type Handler interface {
	Handle(ctx context.Context, ev dialog.Event) (dialog.Reply, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	handler Handler
}

func New(cfg *config.Config, handler Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, handler: handler}, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: "說明"},
			{Command: "help", Description: "說明"},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

// Start long-polls until ctx is cancelled. Each update is handled on its own
// goroutine; the engine serializes events of the same user.
func (b *Bot) Start(ctx context.Context) {
	_ = b.setBotCommands()
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery != nil {
				b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, ""))
			}
			chatID, ev, ok := eventFromUpdate(update)
			if !ok {
				continue
			}
			go b.handle(ctx, chatID, ev)
		}
	}
}

func (b *Bot) handle(ctx context.Context, chatID int64, ev dialog.Event) {
	id := uuid.NewString()
	ctx = dialog.WithEventID(ctx, id)

	reply, err := b.handler.Handle(ctx, ev)
	if err != nil {
		log.Printf("[%s] user %s %q: %v", id, ev.UserID, ev.Text, err)
		b.send(chatID, lang.T("generic_failure"))
		return
	}
	if reply.Err != nil {
		log.Printf("[%s] user %s %q: %v", id, ev.UserID, ev.Text, reply.Err)
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if markup := replyMarkup(reply.Options); markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("[%s] send error: %v", id, err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send error: %v", err)
	}
}

// eventFromUpdate maps a text message or a button press to an engine event.
// Button presses carry their payload as the text.
func eventFromUpdate(update tgbotapi.Update) (int64, dialog.Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		if cq.Message == nil || cq.From == nil {
			return 0, dialog.Event{}, false
		}
		return cq.Message.Chat.ID, dialog.Event{
			UserID:      strconv.FormatInt(cq.From.ID, 10),
			DisplayName: displayName(cq.From),
			Text:        cq.Data,
		}, true
	}
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return 0, dialog.Event{}, false
	}
	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start", text == "/help", strings.HasPrefix(text, "/start "):
		text = "說明"
	}
	return msg.Chat.ID, dialog.Event{
		UserID:      strconv.FormatInt(msg.From.ID, 10),
		DisplayName: displayName(msg.From),
		Text:        text,
	}, true
}

// displayName prefers the username, then the full name. Empty when neither is set.
func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// replyMarkup renders options as an inline keyboard. When a payload does not
// fit in callback data the options become a one-time reply keyboard whose
// buttons send the payload text.
func replyMarkup(opts []dialog.Option) interface{} {
	if len(opts) == 0 {
		return nil
	}
	fits := true
	for _, o := range opts {
		if len(o.Payload) > callbackDataMax {
			fits = false
			break
		}
	}
	if fits {
		var rows [][]tgbotapi.InlineKeyboardButton
		for i := 0; i < len(opts); i += buttonsPerRow {
			var row []tgbotapi.InlineKeyboardButton
			for _, o := range opts[i:min(i+buttonsPerRow, len(opts))] {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Payload))
			}
			rows = append(rows, row)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(opts); i += buttonsPerRow {
		var row []tgbotapi.KeyboardButton
		for _, o := range opts[i:min(i+buttonsPerRow, len(opts))] {
			row = append(row, tgbotapi.NewKeyboardButton(o.Payload))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}
