package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Accepter interface {
	AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error)
}

// Bot routes Telegram updates to the first accepter that claims them.
type Bot struct {
	sender Sender
	app    Accepter
	logger *zap.Logger
}

func New(sender Sender, app Accepter, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{sender: sender, app: app, logger: logger}
}

// Run handles updates until ctx is cancelled or the channel closes.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		// stop looping if ctx is cancelled
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	text := message.Text
	b.logger.Debug("message", zap.String("from", message.From.UserName), zap.String("text", text))

	var (
		accepted bool
		handler  func(ctx context.Context, chatId int64) error
	)
	if message.IsCommand() {
		// drops arguments and any @botname suffix
		accepted, handler = b.app.AcceptCommand("/" + message.Command())
	} else {
		accepted, handler = b.app.AcceptButton(text)
	}
	if !accepted {
		return
	}
	if err := handler(ctx, message.Chat.ID); err != nil {
		b.logger.Error("handling message", zap.String("text", text), zap.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// stop the client's loading indicator whatever happens next
	if _, err := b.sender.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Debug("answering callback", zap.Error(err))
	}
	if query.Message == nil {
		return
	}

	accepted, handler := b.app.AcceptCallback(query)
	if !accepted {
		return
	}
	if err := handler(ctx, query); err != nil {
		b.logger.Error("handling callback", zap.String("data", query.Data), zap.Error(err))
	}
}
