package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	menuStart      = "/start"
	menuMenu       = "/menu"
	buttonCircuits = "Circuits"
	buttonDefault  = "Default circuit"
)

var menuKeyboard = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(buttonCircuits),
		tgbotapi.NewKeyboardButton(buttonDefault),
	),
)

// MainApp answers /start and /menu and delegates everything else.
type MainApp struct {
	sender    Sender
	accepters []Accepter
}

func NewMainApp(sender Sender, accepters ...Accepter) *MainApp {
	return &MainApp{
		sender:    sender,
		accepters: accepters,
	}
}

func (m *MainApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == menuStart {
		return true, m.renderStart()
	} else if command == menuMenu {
		return true, m.renderMenu()
	}
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCommand(command)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCallback(query)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptButton(button)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) renderStart() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Hi, I chart how Formula 1 lap times evolved at each circuit over the years.\n\n"
		message += "You can use these commands:\n\n"
		message += fmt.Sprintf("%s - List the circuits\n", menuCircuits)
		message += fmt.Sprintf("%s - Show the bot menu\n", menuMenu)
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.sender.Send(msg)
		return err
	}
}

func (m *MainApp) renderMenu() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		msg := tgbotapi.NewMessage(chatId, "Bot menu.\n\n")
		msg.ReplyMarkup = menuKeyboard
		_, err := m.sender.Send(msg)
		return err
	}
}
