package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"f1laptrend/pkg/circuits"
	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/pubsub"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	menuCircuits = "/circuits"

	subcommandPager = "pager"
	subcommandView  = "view"
	subcommandChart = "chart"

	symbolInit = "⏮"
	symbolPrev = "◀️"
	symbolNext = "▶️"
	symbolEnd  = "⏭"
)

type CircuitsApp struct {
	sender      Sender
	fetcher     dashboard.Fetcher
	ps          *pubsub.PubSub[dashboard.Snapshot]
	defaults    dashboard.Inputs
	perPage     int
	loadTimeout time.Duration
	logger      *zap.Logger
}

func NewCircuitsApp(sender Sender, fetcher dashboard.Fetcher, ps *pubsub.PubSub[dashboard.Snapshot], defaults dashboard.Inputs, perPage int, logger *zap.Logger) *CircuitsApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	if perPage <= 0 {
		perPage = 10
	}
	return &CircuitsApp{
		sender:      sender,
		fetcher:     fetcher,
		ps:          ps,
		defaults:    defaults,
		perPage:     perPage,
		loadTimeout: 30 * time.Second,
		logger:      logger,
	}
}

func (ca *CircuitsApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == menuCircuits {
		return true, ca.renderCircuits()
	}
	slug := strings.TrimPrefix(command, "/")
	if slug != command && circuits.Known(slug) {
		return true, ca.renderCard(ca.defaults.WithCircuit(slug))
	}
	return false, nil
}

func (ca *CircuitsApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	switch button {
	case buttonCircuits:
		return true, ca.renderCircuits()
	case buttonDefault:
		return true, ca.renderCard(ca.defaults)
	}
	return false, nil
}

func (ca *CircuitsApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	data := strings.Split(query.Data, ":")
	switch data[0] {
	case subcommandPager:
		return true, ca.pagerCallback(data[1:])
	case subcommandView:
		return true, ca.viewCallback(data[1:])
	case subcommandChart:
		return true, ca.chartCallback(data[1:])
	}
	return false, nil
}

func (ca *CircuitsApp) maxPages() int {
	n := len(circuits.All())
	return (n + ca.perPage - 1) / ca.perPage
}

func (ca *CircuitsApp) renderCircuits() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		return ca.sendCircuitsPage(chatId, 0, nil)
	}
}

func (ca *CircuitsApp) sendCircuitsPage(chatId int64, page int, messageId *int) error {
	text, keyboard := ca.circuitsTextMarkup(page)

	var cfg tgbotapi.Chattable
	if messageId == nil {
		msg := tgbotapi.NewMessage(chatId, text)
		msg.ReplyMarkup = keyboard
		cfg = msg
	} else {
		msg := tgbotapi.NewEditMessageText(chatId, *messageId, text)
		msg.ReplyMarkup = &keyboard
		cfg = msg
	}

	_, err := ca.sender.Send(cfg)
	return err
}

func (ca *CircuitsApp) circuitsTextMarkup(page int) (text string, markup tgbotapi.InlineKeyboardMarkup) {
	list := circuits.Range(page*ca.perPage, page*ca.perPage+ca.perPage)
	lines := make([]string, len(list))
	for i, c := range list {
		lines[i] = fmt.Sprintf(" ▸ %s ➡ /%s", c.Label, c.Slug)
	}
	text = fmt.Sprintf("Pick a circuit (%d/%d):\n\n", page+1, ca.maxPages())
	text += strings.Join(lines, "\n")

	var row []tgbotapi.InlineKeyboardButton
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(symbolInit, fmt.Sprintf("%s:init:%d", subcommandPager, page)))
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(symbolPrev, fmt.Sprintf("%s:prev:%d", subcommandPager, page)))
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(symbolNext, fmt.Sprintf("%s:next:%d", subcommandPager, page)))
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(symbolEnd, fmt.Sprintf("%s:end:%d", subcommandPager, page)))

	markup = tgbotapi.NewInlineKeyboardMarkup(row)
	return
}

// nextPage resolves a pager action. ok is false when the page would not
// change.
func nextPage(action string, current, maxPages int) (page int, ok bool) {
	switch action {
	case "init":
		page = 0
	case "prev":
		page = current - 1
	case "next":
		page = current + 1
	case "end":
		page = maxPages - 1
	default:
		return current, false
	}
	if page < 0 || page >= maxPages || page == current {
		return current, false
	}
	return page, true
}

func (ca *CircuitsApp) pagerCallback(data []string) func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	return func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		if len(data) != 2 {
			return fmt.Errorf("malformed pager data %q", query.Data)
		}
		current, err := strconv.Atoi(data[1])
		if err != nil {
			return fmt.Errorf("malformed pager page %q: %w", data[1], err)
		}
		page, ok := nextPage(data[0], current, ca.maxPages())
		if !ok {
			return nil
		}
		messageId := query.Message.MessageID
		return ca.sendCircuitsPage(query.Message.Chat.ID, page, &messageId)
	}
}
