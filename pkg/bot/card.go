package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"f1laptrend/pkg/circuits"
	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/model"
	"f1laptrend/pkg/render"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const selectedMark = "✅ "

// load fetches the datasets of a circuit and waits for all three to settle.
func (ca *CircuitsApp) load(ctx context.Context, circuit string) (dashboard.Datasets, error) {
	ctx, cancel := context.WithTimeout(ctx, ca.loadTimeout)
	defer cancel()

	l := dashboard.NewLoader(ctx, ca.fetcher, ca.ps, ca.logger)
	defer l.Close()
	l.Select(circuit)
	if err := l.Wait(ctx); err != nil {
		return dashboard.Datasets{}, err
	}
	return l.Current(), nil
}

func (ca *CircuitsApp) derive(ctx context.Context, in dashboard.Inputs) (dashboard.View, error) {
	d, err := ca.load(ctx, in.Circuit)
	if err != nil {
		return dashboard.View{}, fmt.Errorf("loading %s: %w", in.Circuit, err)
	}
	return dashboard.Derive(in, d), nil
}

func (ca *CircuitsApp) renderCard(in dashboard.Inputs) func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		view, err := ca.derive(ctx, in)
		if err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatId, cardText(view))
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = cardKeyboard(in)
		_, err = ca.sender.Send(msg)
		return err
	}
}

func (ca *CircuitsApp) viewCallback(data []string) func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	return func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		in, err := ca.parseInputs(data)
		if err != nil {
			return err
		}
		view, err := ca.derive(ctx, in)
		if err != nil {
			return err
		}
		msg := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, cardText(view))
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		keyboard := cardKeyboard(in)
		msg.ReplyMarkup = &keyboard
		_, err = ca.sender.Send(msg)
		return err
	}
}

func (ca *CircuitsApp) chartCallback(data []string) func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	return func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		in, err := ca.parseInputs(data)
		if err != nil {
			return err
		}
		view, err := ca.derive(ctx, in)
		if err != nil {
			return err
		}

		chatId := query.Message.Chat.ID
		var b bytes.Buffer
		if err := render.ComparisonChart(&b, view); err != nil {
			ca.logger.Debug("no chart", zap.String("circuit", in.Circuit), zap.Error(err))
			_, err = ca.sender.Send(tgbotapi.NewMessage(chatId, "Nothing to plot for "+view.CircuitLabel+"."))
			return err
		}
		photo := tgbotapi.NewPhoto(chatId, tgbotapi.FileBytes{Name: "chart.png", Bytes: b.Bytes()})
		photo.Caption = fmt.Sprintf("%s · %s · %s", view.CircuitLabel, view.Comparison.Title, in.Session)
		_, err = ca.sender.Send(photo)
		return err
	}
}

// parseInputs reads <slug>:<mode>:<session>:<metric> on top of the default
// inputs.
func (ca *CircuitsApp) parseInputs(data []string) (dashboard.Inputs, error) {
	if len(data) != 4 {
		return dashboard.Inputs{}, fmt.Errorf("malformed callback data %q", strings.Join(data, ":"))
	}
	if !circuits.Known(data[0]) {
		return dashboard.Inputs{}, fmt.Errorf("unknown circuit %q", data[0])
	}
	in := ca.defaults.WithCircuit(data[0])
	var err error
	if in.Mode, err = model.ParseMode(data[1]); err != nil {
		return in, err
	}
	if in.Session, err = model.ParseSession(data[2]); err != nil {
		return in, err
	}
	if in.Metric, err = model.ParseMetric(data[3]); err != nil {
		return in, err
	}
	return in, nil
}

func callbackData(command string, in dashboard.Inputs) string {
	return strings.Join([]string{command, in.Circuit, string(in.Mode), string(in.Session), string(in.Metric)}, ":")
}

func cardKeyboard(in dashboard.Inputs) tgbotapi.InlineKeyboardMarkup {
	option := func(label string, selected bool, next dashboard.Inputs) tgbotapi.InlineKeyboardButton {
		if selected {
			label = selectedMark + label
		}
		return tgbotapi.NewInlineKeyboardButtonData(label, callbackData(subcommandView, next))
	}
	with := func(f func(*dashboard.Inputs)) dashboard.Inputs {
		next := in
		f(&next)
		return next
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			option("Drivers", in.Mode == model.ModeDriver, with(func(n *dashboard.Inputs) { n.Mode = model.ModeDriver })),
			option("Constructors", in.Mode == model.ModeConstructor, with(func(n *dashboard.Inputs) { n.Mode = model.ModeConstructor })),
		),
		tgbotapi.NewInlineKeyboardRow(
			option("Qualifying", in.Session == model.Qualifying, with(func(n *dashboard.Inputs) { n.Session = model.Qualifying })),
			option("Race", in.Session == model.Race, with(func(n *dashboard.Inputs) { n.Session = model.Race })),
		),
		tgbotapi.NewInlineKeyboardRow(
			option("Lap time", in.Metric == model.MetricTime, with(func(n *dashboard.Inputs) { n.Metric = model.MetricTime })),
			option("Gap Δ", in.Metric == model.MetricGap, with(func(n *dashboard.Inputs) { n.Metric = model.MetricGap })),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Chart", callbackData(subcommandChart, in)),
		),
	)
}

// cardText lays the trend card and the comparison table out in a
// preformatted MarkdownV2 block.
func cardText(view dashboard.View) string {
	var sb strings.Builder
	sb.WriteString(render.TrendCard(view))
	if view.Years != nil {
		fmt.Fprintf(&sb, "Years covered: %d to %d\n", view.Years.From, view.Years.To)
	}
	sb.WriteString("\n")
	sb.WriteString(render.ComparisonTable(view))
	return "```\n" + escapePre(sb.String()) + "\n```"
}

// escapePre escapes what MarkdownV2 does not allow verbatim inside pre
// blocks.
func escapePre(s string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(s)
}
